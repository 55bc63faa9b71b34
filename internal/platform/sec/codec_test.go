// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package sec_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowondev/sowon/internal/platform/sec"
)

/*
TestLegacyCodec_Deterministic verifies the compatibility encoding: the same
secret and salt always produce the same verifier, byte for byte.
*/
func TestLegacyCodec_Deterministic(t *testing.T) {
	codec := sec.NewLegacyCodec("system-salt")

	first, err := codec.Encode("correct horse")
	require.NoError(t, err)
	second, err := codec.Encode("correct horse")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// The verifier is exactly base64(secret + ":" + salt)
	expected := base64.StdEncoding.EncodeToString([]byte("correct horse:system-salt"))
	assert.Equal(t, expected, first)
}

/*
TestLegacyCodec_Matches checks the verification properties of the legacy codec.
*/
func TestLegacyCodec_Matches(t *testing.T) {
	codec := sec.NewLegacyCodec("system-salt")

	verifier, err := codec.Encode("secret-one")
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		matches bool
	}{
		{"correct_secret", "secret-one", true},
		{"wrong_secret", "secret-two", false},
		{"empty_secret", "", false},
		{"case_sensitive", "Secret-One", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, codec.Matches(tt.secret, verifier))
		})
	}
}

/*
TestLegacyCodec_SaltChangesVerifier ensures two deployments with different
salts never produce interchangeable verifiers.
*/
func TestLegacyCodec_SaltChangesVerifier(t *testing.T) {
	first, err := sec.NewLegacyCodec("salt-a").Encode("same-secret")
	require.NoError(t, err)
	second, err := sec.NewLegacyCodec("salt-b").Encode("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.False(t, sec.NewLegacyCodec("salt-b").Matches("same-secret", first))
}

/*
TestBcryptCodec_EncodeAndMatch exercises the default codec round trip.
*/
func TestBcryptCodec_EncodeAndMatch(t *testing.T) {
	codec := sec.NewBcryptCodec()

	verifier, err := codec.Encode("superSecret1")
	require.NoError(t, err)
	require.NotEmpty(t, verifier)

	// Plaintext never appears in the verifier
	assert.NotContains(t, verifier, "superSecret1")

	assert.True(t, codec.Matches("superSecret1", verifier))
	assert.False(t, codec.Matches("wrong-secret", verifier))
}

/*
TestBcryptCodec_UniqueVerifiers verifies the per-verifier random salt:
encoding the same secret twice must not produce the same verifier.
*/
func TestBcryptCodec_UniqueVerifiers(t *testing.T) {
	codec := sec.NewBcryptCodec()

	first, err := codec.Encode("superSecret1")
	require.NoError(t, err)
	second, err := codec.Encode("superSecret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, codec.Matches("superSecret1", first))
	assert.True(t, codec.Matches("superSecret1", second))
}

/*
TestGenerateTemporarySecret checks length and uniqueness of reset secrets.
*/
func TestGenerateTemporarySecret(t *testing.T) {
	first, err := sec.GenerateTemporarySecret()
	require.NoError(t, err)
	second, err := sec.GenerateTemporarySecret()
	require.NoError(t, err)

	// 9 random bytes encode to 12 URL-safe characters — long enough to pass
	// the secret length rule at login.
	assert.Len(t, first, 12)
	assert.NotEqual(t, first, second)
}

/*
TestHashToken verifies the digest shape and stability.
*/
func TestHashToken(t *testing.T) {
	digest := sec.HashToken("some-token")

	assert.Len(t, digest, 64) // hex-encoded SHA-256
	assert.Equal(t, digest, sec.HashToken("some-token"))
	assert.NotEqual(t, digest, sec.HashToken("other-token"))
}
