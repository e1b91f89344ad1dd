package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringUsesAlphabet(t *testing.T) {
	r := New()
	alphabet := "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for i := 0; i < 50; i++ {
		s := r.String(8, alphabet)
		assert.Len(t, s, 8)
		for _, c := range s {
			assert.True(t, strings.ContainsRune(alphabet, c), "unexpected %q", c)
		}
	}
}

func TestStringDegenerateInputs(t *testing.T) {
	r := New()
	assert.Equal(t, "", r.String(0, "AB"))
	assert.Equal(t, "", r.String(4, ""))
}
