// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

/*
Package account implements the account-management and session engine.

It owns user identity, credential verification, session establishment,
membership-tier state (free/premium with expiry), and usage-metered history
records (purchases, consultations) including a daily consultation counter.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies beyond the durable key-value store collaborator and encapsulate
all business rules related to identity and entitlement.
*/
package account

import (
	"encoding/json"
	"time"
)

// # Domain Entities

// CalendarType distinguishes solar and lunar birth dates.
type CalendarType string

const (
	CalendarSolar CalendarType = "solar"
	CalendarLunar CalendarType = "lunar"
)

// MembershipType is the entitlement tier of an account.
type MembershipType string

const (
	MembershipFree    MembershipType = "free"
	MembershipPremium MembershipType = "premium"
)

// Account represents a registered member of the Sowon platform.
//
// # Persistence vs Exposure
//
// The account collection is persisted as JSON, so CredentialVerifier must
// marshal. Every value handed to a caller outside this package goes through
// [Account.Redacted], which strips the verifier (omitempty then drops it).
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	// CredentialVerifier is the opaque output of the credential codec.
	// Never exposed outside the account service.
	CredentialVerifier string `json:"credential_verifier,omitempty"`

	DisplayName  string       `json:"display_name"`
	Phone        string       `json:"phone,omitempty"`
	BirthDate    string       `json:"birth_date,omitempty"`
	BirthTime    string       `json:"birth_time,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	CalendarType CalendarType `json:"calendar_type"`

	MembershipType MembershipType `json:"membership_type"`

	// PremiumExpiry is only meaningful when MembershipType is premium.
	// nil means "premium without expiry"; a free account ignores any stale value.
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`

	// ProfileData is an opaque computed-result blob written by an external
	// engine; the account service merely stores and returns it.
	ProfileData       json.RawMessage `json:"profile_data,omitempty"`
	ProfileComputedAt *time.Time      `json:"profile_computed_at,omitempty"`

	// History sequences are most-recent-first and append-only from the
	// perspective of public operations.
	PurchaseHistory     []PurchaseRecord     `json:"purchase_history"`
	ConsultationHistory []ConsultationRecord `json:"consultation_history"`
}

// PurchaseRecord is a single metered purchase. ID and Date are assigned by
// the ledger at append time, never trusted from caller input.
type PurchaseRecord struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Date time.Time `json:"date"`

	// Details carries arbitrary caller-supplied fields (amount, item name...).
	Details map[string]any `json:"details,omitempty"`
}

// ConsultationRecord is a single metered consultation. ID and Date are
// assigned by the ledger at append time.
type ConsultationRecord struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`

	// Details carries arbitrary caller-supplied fields (topic, question...).
	Details map[string]any `json:"details,omitempty"`
}

// # Copying & Redaction

// Clone returns a deep copy of the account. History slices and detail maps
// are copied so that mutations on the clone never leak back.
func (account *Account) Clone() *Account {
	if account == nil {
		return nil
	}

	clone := *account

	if account.PremiumExpiry != nil {
		expiry := *account.PremiumExpiry
		clone.PremiumExpiry = &expiry
	}
	if account.ProfileComputedAt != nil {
		computedAt := *account.ProfileComputedAt
		clone.ProfileComputedAt = &computedAt
	}
	if account.ProfileData != nil {
		clone.ProfileData = append(json.RawMessage(nil), account.ProfileData...)
	}

	clone.PurchaseHistory = make([]PurchaseRecord, len(account.PurchaseHistory))
	for i, record := range account.PurchaseHistory {
		record.Details = cloneDetails(record.Details)
		clone.PurchaseHistory[i] = record
	}

	clone.ConsultationHistory = make([]ConsultationRecord, len(account.ConsultationHistory))
	for i, record := range account.ConsultationHistory {
		record.Details = cloneDetails(record.Details)
		clone.ConsultationHistory[i] = record
	}

	return &clone
}

// Redacted returns a deep copy with the credential verifier stripped.
// This is the only shape of Account that may leave the service layer.
func (account *Account) Redacted() *Account {
	clone := account.Clone()
	if clone != nil {
		clone.CredentialVerifier = ""
	}
	return clone
}

// cloneDetails shallow-copies a details map (values are caller-owned blobs).
func cloneDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	copied := make(map[string]any, len(details))
	for key, value := range details {
		copied[key] = value
	}
	return copied
}

// # Field Identifiers

// Global field names for validation and identity mapping in the account domain.
const (
	FieldEmail        = "email"
	FieldSecret       = "password"
	FieldDisplayName  = "display_name"
	FieldPhone        = "phone"
	FieldCalendarType = "calendar_type"
	FieldGender       = "gender"
)
