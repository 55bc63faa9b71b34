// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// # Secure Tokens

// GenerateSecureToken returns a URL-safe random token of the given byte length.
//
// # Entropy
//
// Tokens are read from crypto/rand, giving practical collision resistance for
// single-use artifacts (temporary secrets, correlation tokens).
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a token.
// Used when a token must be looked up later without storing its plaintext.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

// GenerateTemporarySecret creates a random single-use secret suitable for the
// password-reset hand-off.
//
// The secret is long enough to pass the registration length rule, so the
// account holder can log in with it directly before choosing a new one.
func GenerateTemporarySecret() (string, error) {
	// 9 random bytes encode to 12 URL-safe characters.
	return GenerateSecureToken(9)
}
