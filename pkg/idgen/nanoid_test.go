package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	g, err := New("SK-", 8, ReferenceAlphabet)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := g.Generate()
		require.NoError(t, err)
		assert.Len(t, ref, 11)
		valid, reason := g.Validate(ref)
		assert.True(t, valid, reason)
		seen[ref] = true
	}
	assert.Greater(t, len(seen), 95)
}

func TestGenerator_Validate(t *testing.T) {
	g := MustNew("SK-", 8, ReferenceAlphabet)

	tests := []struct {
		name string
		ref  string
		ok   bool
	}{
		{"valid", "SK-ABCDEFGH", true},
		{"missing prefix", "ABCDEFGHJK", false},
		{"short", "SK-ABC", false},
		{"confusable character", "SK-ABCDEFG0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := g.Validate(tt.ref)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNew_InvalidArguments(t *testing.T) {
	_, err := New("SK-", 0, ReferenceAlphabet)
	assert.Error(t, err)

	_, err = New("SK-", 8, "A")
	assert.Error(t, err)
}
