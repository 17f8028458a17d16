// Package apikey issues random API keys and verifies them against bcrypt
// hashes. Only hashes are kept in configuration.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Prefix marks keys issued by Generate so they are recognisable in logs
// and secret scanners.
const Prefix = "vxs_"

// DefaultCost is the bcrypt cost used by Hash.
const DefaultCost = 12

// keyBytes is the amount of randomness in a generated key.
const keyBytes = 24

// ErrInvalidKey is returned when no configured hash matches a key.
var ErrInvalidKey = errors.New("apikey: invalid key")

// Generate returns a new random key.
func Generate() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("apikey: generate: %w", err)
	}
	return Prefix + hex.EncodeToString(b), nil
}

// Hash returns the bcrypt hash to place in auth.api_keys.
func Hash(key string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("apikey: hash: %w", err)
	}
	return string(h), nil
}

// Entry is one configured key: a label for logs and its bcrypt hash.
type Entry struct {
	Name string `mapstructure:"name"`
	Hash string `mapstructure:"hash"`
}

// Verifier checks presented keys against a fixed set of hashes.
type Verifier struct {
	entries []Entry
}

// NewVerifier checks that every entry carries a bcrypt hash.
func NewVerifier(entries []Entry) (*Verifier, error) {
	for i, e := range entries {
		if _, err := bcrypt.Cost([]byte(e.Hash)); err != nil {
			return nil, fmt.Errorf("apikey: entry %d (%s): not a bcrypt hash", i, e.Name)
		}
	}
	return &Verifier{entries: append([]Entry(nil), entries...)}, nil
}

// Len returns the number of configured keys.
func (v *Verifier) Len() int { return len(v.entries) }

// Verify returns the name of the entry matching key. Every entry is tried
// in order; bcrypt comparison is constant time per hash.
func (v *Verifier) Verify(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	for _, e := range v.entries {
		if bcrypt.CompareHashAndPassword([]byte(e.Hash), []byte(key)) == nil {
			return e.Name, nil
		}
	}
	return "", ErrInvalidKey
}
