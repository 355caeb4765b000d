// Package shortcode generates the short codes links are addressed by.
//
// Codes are drawn uniformly at random, so adjacent codes cannot be guessed.
// With 64 symbols and 6 positions there are 2^36 possible codes; at about
// 1000 codes per hour a 1% chance of one collision is reached only after
// several days. Collisions are resolved by the store's unique constraint and
// a bounded retry in the caller, not here.
package shortcode

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet holds the 64 URL-safe symbols codes are drawn from.
	Alphabet = "_-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// Length is the number of symbols in a code.
	Length = 6
)

// Generator produces random codes of a fixed length.
type Generator struct {
	alphabet string
	length   int
}

// New returns a Generator for the default alphabet and length.
func New() *Generator {
	return &Generator{
		alphabet: Alphabet,
		length:   Length,
	}
}

// Generate returns a new random code.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(g.alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate code: %w", op, err)
	}

	return code, nil
}

// Valid reports whether code could have been produced by a default Generator.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}

	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}

	return true
}
