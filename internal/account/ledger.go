// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account

import (
	"time"

	"github.com/sowondev/sowon/pkg/uuid"
)

// # History Ledger

// HistoryLedger appends purchase and consultation records to an account and
// computes the per-day consultation count used for rate limiting.
//
// # Record Integrity
//
// Record IDs and dates are assigned here at append time and never trusted
// from caller input. Histories are prepended, keeping them most-recent-first.
type HistoryLedger struct {
	policy   MembershipPolicy
	location *time.Location

	// Overridable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewHistoryLedger constructs a [HistoryLedger]. Per-day counting truncates
// dates to calendar days in the given fixed reference location.
func NewHistoryLedger(location *time.Location) *HistoryLedger {
	return &HistoryLedger{
		location: location,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// PurchaseInput carries the caller-supplied portion of a purchase record.
type PurchaseInput struct {
	Type    string
	Details map[string]any
}

// ConsultationInput carries the caller-supplied portion of a consultation record.
type ConsultationInput struct {
	Details map[string]any
}

/*
AppendPurchase assigns a fresh ID and date, merges the caller fields, and
prepends the record to the account's purchase history. If the purchase type
carries a membership effect, the resulting patch is applied to the same
account in the same mutation.

Parameters:
  - account: *Account (mutated in place; caller persists)
  - input: PurchaseInput

Returns:
  - PurchaseRecord: The appended record
*/
func (ledger *HistoryLedger) AppendPurchase(account *Account, input PurchaseInput) PurchaseRecord {
	appendTime := ledger.now()

	record := PurchaseRecord{
		ID:      ledger.newID(),
		Type:    input.Type,
		Date:    appendTime,
		Details: cloneDetails(input.Details),
	}

	// Prepend: most-recent-first ordering.
	account.PurchaseHistory = append([]PurchaseRecord{record}, account.PurchaseHistory...)

	// Entitlement-bearing purchases update the membership in the same write.
	if patch := ledger.policy.ApplyPurchaseEffect(account, input.Type, appendTime); patch != nil {
		patch.Apply(account)
	}

	return record
}

/*
AppendConsultation assigns a fresh ID and date, merges the caller fields,
and prepends the record to the account's consultation history.

Parameters:
  - account: *Account (mutated in place; caller persists)
  - input: ConsultationInput

Returns:
  - ConsultationRecord: The appended record
*/
func (ledger *HistoryLedger) AppendConsultation(account *Account, input ConsultationInput) ConsultationRecord {
	record := ConsultationRecord{
		ID:      ledger.newID(),
		Date:    ledger.now(),
		Details: cloneDetails(input.Details),
	}

	account.ConsultationHistory = append([]ConsultationRecord{record}, account.ConsultationHistory...)

	return record
}

/*
CountToday counts consultation records whose date falls on the same calendar
day as now, both truncated in the ledger's fixed reference time zone.

Parameters:
  - account: *Account
  - now: time.Time

Returns:
  - int: Number of consultations on now's calendar day
*/
func (ledger *HistoryLedger) CountToday(account *Account, now time.Time) int {
	todayYear, todayMonth, todayDay := now.In(ledger.location).Date()

	count := 0
	for _, record := range account.ConsultationHistory {
		year, month, day := record.Date.In(ledger.location).Date()
		if year == todayYear && month == todayMonth && day == todayDay {
			count++
		}
	}

	return count
}
