package idgen

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ReferenceAlphabet avoids characters that are easily confused when read aloud
// or copied by hand (0/O, 1/I).
const ReferenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generator produces prefixed human-readable references such as "SK-7QH2KD9M".
type Generator struct {
	prefix   string
	size     int
	alphabet string
}

// New creates a Generator. size must be between 1 and 64 and alphabet must
// have at least 2 characters.
func New(prefix string, size int, alphabet string) (*Generator, error) {
	if size < 1 || size > 64 {
		return nil, fmt.Errorf("reference size must be between 1 and 64, got %d", size)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("reference alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	return &Generator{
		prefix:   prefix,
		size:     size,
		alphabet: alphabet,
	}, nil
}

// MustNew is New that panics on invalid arguments.
func MustNew(prefix string, size int, alphabet string) *Generator {
	g, err := New(prefix, size, alphabet)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Generator) Generate() (string, error) {
	id, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference: %w", err)
	}
	return g.prefix + id, nil
}

// Validate reports whether ref could have been produced by g.
func (g *Generator) Validate(ref string) (bool, string) {
	if !strings.HasPrefix(ref, g.prefix) {
		return false, fmt.Sprintf("missing prefix %q", g.prefix)
	}
	body := strings.TrimPrefix(ref, g.prefix)
	if len(body) != g.size {
		return false, fmt.Sprintf("expected length %d, got %d", g.size, len(body))
	}
	for _, c := range body {
		if !strings.ContainsRune(g.alphabet, c) {
			return false, fmt.Sprintf("character '%c' not in alphabet", c)
		}
	}
	return true, ""
}
