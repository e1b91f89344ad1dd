package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "digits and letters", input: "1234ABCD"},
		{name: "all letters", input: "ABCDEFGH"},
		{name: "all digits", input: "00000000"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "ABCDEFG", wantErr: true},
		{name: "too long", input: "ABCDEFGHI", wantErr: true},
		{name: "lowercase", input: "abcdefgh", wantErr: true},
		{name: "mixed case", input: "ABCDefgh", wantErr: true},
		{name: "punctuation", input: "ABCD-EFG", wantErr: true},
		{name: "whitespace", input: "ABCD EFG", wantErr: true},
		{name: "multibyte of right byte length", input: "ABCDEFÄ", wantErr: true},
		{name: "multibyte of right rune length", input: "ABCDEFGÄ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid, err := ParseSessionID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSessionID)
				assert.True(t, sid.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, sid.String())
		})
	}
}

func TestParseSessionIDRejectsEveryByteOutsideAlphabet(t *testing.T) {
	for b := 0; b < 256; b++ {
		input := "ABCDEFG" + string([]byte{byte(b)})
		_, err := ParseSessionID(input)
		if strings.IndexByte(SessionIDAlphabet, byte(b)) >= 0 {
			assert.NoError(t, err, "byte %d should be accepted", b)
		} else {
			assert.ErrorIs(t, err, ErrInvalidSessionID, "byte %d should be rejected", b)
		}
	}
}

func TestSessionIDIsComparable(t *testing.T) {
	a := MustParseSessionID("ABCDEFGH")
	b := MustParseSessionID("ABCDEFGH")
	c := MustParseSessionID("ZZZZZZZZ")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	index := map[SessionID]int{a: 1}
	assert.Equal(t, 1, index[b])
	_, ok := index[c]
	assert.False(t, ok)
}

func TestSessionIDJSONValidates(t *testing.T) {
	var out struct {
		ID SessionID `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1234ABCD"}`), &out))
	assert.Equal(t, "1234ABCD", out.ID.String())

	err := json.Unmarshal([]byte(`{"id":"1234abcd"}`), &out)
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1234ABCD"}`, string(data))
}

func TestMustParseSessionIDPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseSessionID("nope") })
}

func TestZeroSessionID(t *testing.T) {
	var sid SessionID
	assert.True(t, sid.IsZero())
	assert.Equal(t, "", sid.String())
	assert.False(t, MustParseSessionID("00000000").IsZero())
}
