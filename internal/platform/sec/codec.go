// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (credential encoding, JWT
// signing, secure token generation) from the domain logic. It acts as an
// Infrastructure service injected into the Application layer via the
// [CredentialCodec] and TokenProvider interfaces.
package sec

// CredentialCodec turns a plaintext secret into a stored verifier and checks
// a plaintext secret against a stored verifier.
//
// # Contract
//
// The verifier is opaque to callers. It is persisted on the account record
// and must never be exposed outside the account service.
type CredentialCodec interface {

	/*
		Encode derives a stored verifier from a plaintext secret.

		Parameters:
		  - secret: string (plaintext)

		Returns:
		  - string: Opaque verifier for persistence
		  - error: Derivation failures
	*/
	Encode(secret string) (string, error)

	/*
		Matches reports whether the plaintext secret corresponds to the verifier.

		Parameters:
		  - secret: string (plaintext)
		  - verifier: string (stored)

		Returns:
		  - bool: true iff the secret produced this verifier
	*/
	Matches(secret, verifier string) bool
}
