// Package token issues the opaque identifiers embedded in confirmation and
// rating links.  Links are followed without any login, so the only security
// property is unguessability: 32 bytes from crypto/rand, URL-safe encoded.
// The Source interface exists so tests can substitute a deterministic
// sequence.
package token

import (
	"crypto/rand"
	"encoding/base64"
)

// Source produces opaque, unguessable, single-purpose identifiers.
type Source interface {
	New() string
}

// CryptoSource is the production Source.
type CryptoSource struct{}

// New returns a 43-character URL-safe token backed by 32 random bytes.
func (CryptoSource) New() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure means the platform RNG is broken; there is no
		// safe fallback for link tokens.
		panic("token: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
