package auth

import (
	"net/http"
	"strings"
)

// CookieName is the cookie browser clients carry their credential in
const CookieName = "token"

// Token source names, in precedence order
const (
	SourceHeader = "header"
	SourceCookie = "cookie"
	SourcePath   = "path"
)

// TokenSource is a candidate credential and where in the request it was found
type TokenSource struct {
	Name  string
	Token string
}

// RequestTokens returns the candidate credentials carried by r: the
// Authorization bearer token first, then the token cookie. Sources that are
// absent or empty are omitted.
func RequestTokens(r *http.Request) []TokenSource {
	var sources []TokenSource

	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			sources = append(sources, TokenSource{Name: SourceHeader, Token: token})
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		sources = append(sources, TokenSource{Name: SourceCookie, Token: cookie.Value})
	}

	return sources
}
