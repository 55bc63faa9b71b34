// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the service layer — never in handlers or
// storage. It ensures that business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sowondev/sowon/internal/platform/apperr"
)

var (
	// emailShapeRegex matches `local@domain` where the domain contains a dot.
	// Deliberately simpler than RFC 5322: it mirrors the acceptance rule the
	// original application enforced at registration.
	emailShapeRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// koreanPhoneRegex matches mobile numbers of the form 01X-XXXX-XXXX.
	// Hyphens are optional. The middle group also accepts three digits:
	// 011/016/017/018/019 numbers issued before the 010 renumbering carry
	// 3-digit middles, and stored accounts still hold such values.
	koreanPhoneRegex = regexp.MustCompile(`^01[0-9]-?[0-9]{3,4}-?[0-9]{4}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Ordering
//
// Rules record failures in call order, so Details[0] of the resulting error
// is always the first violated rule. Services rely on this to report the
// first violation of their documented check sequence.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
// Empty values are skipped so that Required reports the missing field first.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if value == "" {
		return v
	}
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// EmailShape fails if the value is not of the form `local@domain` with a
// dotted domain. Empty values are skipped (pair with Required when mandatory).
func (v *Validator) EmailShape(field, value string) *Validator {
	if value == "" {
		return v
	}
	if !emailShapeRegex.MatchString(value) {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// KoreanPhone fails if the value is not a Korean mobile number
// (01X-XXXX-XXXX, hyphens optional). Empty values are skipped since the
// phone field is optional.
func (v *Validator) KoreanPhone(field, value string) *Validator {
	if value == "" {
		return v
	}
	if !koreanPhoneRegex.MatchString(value) {
		v.add(field, "Must be a valid mobile number (01X-XXXX-XXXX)")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("secret", len(secret) < 8, "Minimum 8 characters")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
