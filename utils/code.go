package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateCode returns a random hex string of 2*n characters.
func GenerateCode(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
