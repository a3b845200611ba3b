package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for digests.
// The version suffix leaves room for a future algorithm migration.
const (
	DomainComposition = "reel/composition/v1"
	DomainRender      = "reel/render/v1"
)

// HashWithDomain computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest hashes the canonical JSON of a composition. Two compositions with
// the same digest are byte-for-byte identical documents, patch log included.
func Digest(c *Composition) (string, error) {
	canonical, err := CanonicalJSON(c)
	if err != nil {
		return "", fmt.Errorf("Digest: failed to marshal: %w", err)
	}
	return HashWithDomain(DomainComposition, canonical), nil
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when the composition is known to be valid.
func MustDigest(c *Composition) string {
	d, err := Digest(c)
	if err != nil {
		panic(err)
	}
	return d
}

// ShortID returns the first eight characters of an id for display.
func ShortID(id string) string {
	n := 0
	for i := range id {
		if n == 8 {
			return id[:i]
		}
		n++
	}
	return id
}
