// Package codes implements the pairing-code registry: issuance, atomic
// consumption and TTL expiry of the short codes displays show on screen.
package codes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Alphabet excludes glyphs that read ambiguously on a TV across the room:
// 0/O, 1/I and lowercase entirely.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultLength is the number of characters in a pairing code.
const DefaultLength = 6

// _issueAttempts bounds regeneration on collision. The code space is large
// enough that exhausting this indicates a registry fault, not bad luck.
const _issueAttempts = 5

var (
	ErrNotFound        = errors.New("pairing code not found")
	ErrExpired         = errors.New("pairing code expired")
	ErrAlreadyConsumed = errors.New("pairing code already consumed")
	ErrIssueExhausted  = errors.New("pairing code issuance exhausted retries")
)

// Config -.
type Config struct {
	Length int
	TTL    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Length <= 0 {
		c.Length = DefaultLength
	}

	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}

	return c
}

// Generate returns a random code of the given length drawn from Alphabet.
func Generate(length int) (string, error) {
	var b strings.Builder

	b.Grow(length)

	max := big.NewInt(int64(len(Alphabet)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("codes - Generate - rand.Int: %w", err)
		}

		b.WriteByte(Alphabet[n.Int64()])
	}

	return b.String(), nil
}

// IsValid reports whether s is exactly length characters from Alphabet.
// Validation is case sensitive: codes are issued uppercase and must be
// submitted uppercase.
func IsValid(s string, length int) bool {
	if len(s) != length {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(Alphabet, rune(s[i])) {
			return false
		}
	}

	return true
}
