package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Fingerprint("hello"), Fingerprint("hello"))
	})

	t.Run("content sensitive", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint("hello"), Fingerprint("hello "))
	})

	t.Run("hex sha256", func(t *testing.T) {
		hash := Fingerprint("hello")
		assert.Len(t, hash, 64)
		assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)
	})
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n", 0},
		{"short text rounds up to one", "hi", 1},
		{"four chars per token", "12345678", 2},
		{"surrounding whitespace ignored", "  12345678  ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.text))
		})
	}
}
