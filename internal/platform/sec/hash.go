// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCodec is the default [CredentialCodec]. Each verifier carries its own
// random salt (bcrypt-internal), so identical secrets produce different
// verifiers across accounts.
type BcryptCodec struct{}

// NewBcryptCodec constructs the default per-account-salted codec.
func NewBcryptCodec() *BcryptCodec { return &BcryptCodec{} }

// Encode hashes a plain-text secret using the bcrypt algorithm.
func (codec *BcryptCodec) Encode(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash secret: %w", err)
	}
	return string(hashedBytes), nil
}

// Matches compares a plain-text secret with its stored bcrypt verifier
// using bcrypt's constant-time comparison.
func (codec *BcryptCodec) Matches(secret, verifier string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(verifier), []byte(secret))
	return err == nil
}
