package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainMainRule   = "audioctl/rule/main/v1"
	DomainEffectRule = "audioctl/rule/effect/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the hex SHA-256 of obj's canonical JSON under domain.
// Identical normalized content always yields the same digest.
func Digest(domain string, obj map[string]any) (string, error) {
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("Digest: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustDigest is like Digest but panics on error.
// Use only when inputs are built from known-good types.
func MustDigest(domain string, obj map[string]any) string {
	d, err := Digest(domain, obj)
	if err != nil {
		panic(err)
	}
	return d
}
