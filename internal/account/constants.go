// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account

import "time"

// # Account Constraints

const (
	// SecretMinLength is the minimum plaintext secret length at registration
	// and on secret changes.
	SecretMinLength = 8

	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// DisplayNameMaxLength bounds user-entered display names.
	DisplayNameMaxLength = 50
)
