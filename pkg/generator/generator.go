// Package generator produces random passwords from a cryptographically
// strong source.
package generator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// ErrInvalidConfig is returned for an empty class set or a length under 1.
var ErrInvalidConfig = errors.New("invalid generator configuration")

// ClassSet selects which character classes a password draws from.
type ClassSet struct {
	Lower  bool
	Upper  bool
	Digit  bool
	Symbol bool
}

// AllClasses is the default: every class enabled.
var AllClasses = ClassSet{Lower: true, Upper: true, Digit: true, Symbol: true}

func (c ClassSet) alphabets() []string {
	var out []string
	if c.Lower {
		out = append(out, lowercase)
	}
	if c.Upper {
		out = append(out, uppercase)
	}
	if c.Digit {
		out = append(out, digits)
	}
	if c.Symbol {
		out = append(out, symbols)
	}
	return out
}

// Config describes one password to generate.
type Config struct {
	Length  int
	Classes ClassSet
}

// Generator draws from an injectable random source. The production
// source is crypto/rand; tests may supply a deterministic reader without
// weakening the production path.
type Generator struct {
	rand io.Reader
}

// New returns a Generator on crypto/rand.
func New() *Generator {
	return NewWithSource(rand.Reader)
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src io.Reader) *Generator {
	return &Generator{rand: src}
}

// Generate returns a random password of cfg.Length characters drawn from
// the configured classes. When the length allows, at least one character
// of every requested class is present; positions are then shuffled so
// the guaranteed characters do not cluster at the front.
func (g *Generator) Generate(cfg Config) (string, error) {
	if cfg.Length < 1 {
		return "", fmt.Errorf("length must be at least 1: %w", ErrInvalidConfig)
	}

	alphabets := cfg.Classes.alphabets()
	if len(alphabets) == 0 {
		return "", fmt.Errorf("at least one character class is required: %w", ErrInvalidConfig)
	}

	pool := strings.Join(alphabets, "")

	chars := make([]byte, 0, cfg.Length)
	if cfg.Length >= len(alphabets) {
		for _, alphabet := range alphabets {
			c, err := g.pick(alphabet)
			if err != nil {
				return "", err
			}
			chars = append(chars, c)
		}
	}

	for len(chars) < cfg.Length {
		c, err := g.pick(pool)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	if err := g.shuffle(chars); err != nil {
		return "", err
	}

	return string(chars), nil
}

// Generate is the package level shorthand on crypto/rand.
func Generate(cfg Config) (string, error) {
	return New().Generate(cfg)
}

func (g *Generator) pick(alphabet string) (byte, error) {
	i, err := g.intn(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[i], nil
}

// shuffle is Fisher-Yates with the same random source as the draws.
func (g *Generator) shuffle(chars []byte) error {
	for i := len(chars) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return nil
}

// intn returns a uniform int in [0, n) without modulo bias.
func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
