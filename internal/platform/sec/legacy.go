// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package sec

import (
	"crypto/subtle"
	"encoding/base64"
)

// LegacyCodec reproduces the original client-side credential encoding:
// base64 of the secret concatenated with a single system-wide salt.
//
// # Known Weakness
//
// This is an obfuscation, not a cryptographic guarantee. The encoding is
// deterministic, the salt is shared across every account, and the verifier is
// reversible by anyone with code access. It exists only so that verifiers
// written by the original application keep matching. New deployments must use
// [BcryptCodec]; select this codec only with CREDENTIAL_CODEC=legacy.
type LegacyCodec struct {
	salt string
}

// NewLegacyCodec constructs the compatibility codec with the system-wide salt.
func NewLegacyCodec(salt string) *LegacyCodec {
	return &LegacyCodec{salt: salt}
}

// Encode derives the verifier deterministically from the secret and the
// fixed salt. Pure; no side effects.
func (codec *LegacyCodec) Encode(secret string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(secret + ":" + codec.salt)), nil
}

// Matches reports whether Encode(secret) equals the stored verifier.
func (codec *LegacyCodec) Matches(secret, verifier string) bool {
	encoded, _ := codec.Encode(secret)

	// Constant-time comparison; the scheme is weak regardless, but there is
	// no reason to add a timing side channel on top.
	return subtle.ConstantTimeCompare([]byte(encoded), []byte(verifier)) == 1
}
