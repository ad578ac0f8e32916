// Package auth generates and hashes the API keys handed to the browser
// extension.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyPrefix marks every Arvai API key.
const KeyPrefix = "arvai_"

// HeaderName carries the key on authenticated requests.
const HeaderName = "X-Arvai-API-Key"

const displayPrefixLen = 12

// GenerateKey returns a new key: "arvai_" followed by 32 hex characters.
func GenerateKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return KeyPrefix + hex.EncodeToString(buf), nil
}

// HashKey is the value stored in place of the key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// DisplayPrefix is the part of the key shown in listings.
func DisplayPrefix(key string) string {
	if len(key) < displayPrefixLen {
		return key
	}
	return key[:displayPrefixLen]
}

// HasValidPrefix reports whether key looks like an Arvai key.
func HasValidPrefix(key string) bool {
	return strings.HasPrefix(key, KeyPrefix)
}
