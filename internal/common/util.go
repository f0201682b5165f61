package common

import (
	"crypto/rand"
	"fmt"
)

// GenerateRandByteArray returns size bytes read from crypto/rand.
func GenerateRandByteArray(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// WipeByteArray zeroes b. Passwords read from a terminal are wiped once
// they have been handed on.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
