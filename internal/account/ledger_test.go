// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowondev/sowon/internal/account"
)

// kst is a fixed-offset stand-in for the reference zone, so tests do not
// depend on the host's tzdata.
var kst = time.FixedZone("KST", 9*60*60)

/*
TestHistoryLedger_AppendPurchase verifies that the ledger assigns ID and
date, prepends records, and preserves the caller's details.
*/
func TestHistoryLedger_AppendPurchase(t *testing.T) {
	ledger := account.NewHistoryLedger(kst)
	subject := &account.Account{MembershipType: account.MembershipFree}

	before := time.Now()
	first := ledger.AppendPurchase(subject, account.PurchaseInput{
		Type:    "single_reading",
		Details: map[string]any{"amount": 5000},
	})
	second := ledger.AppendPurchase(subject, account.PurchaseInput{
		Type: "single_reading",
	})

	// Ledger-assigned identity and timestamp
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Date.Before(before))
	assert.Equal(t, map[string]any{"amount": 5000}, first.Details)

	// Most-recent-first ordering
	require.Len(t, subject.PurchaseHistory, 2)
	assert.Equal(t, second.ID, subject.PurchaseHistory[0].ID)
	assert.Equal(t, first.ID, subject.PurchaseHistory[1].ID)

	// Ordinary purchases leave the membership untouched
	assert.Equal(t, account.MembershipFree, subject.MembershipType)
	assert.Nil(t, subject.PremiumExpiry)
}

/*
TestHistoryLedger_AppendPurchase_PremiumEffect verifies that an
entitlement-bearing purchase upgrades the membership in the same mutation.
*/
func TestHistoryLedger_AppendPurchase_PremiumEffect(t *testing.T) {
	ledger := account.NewHistoryLedger(kst)
	subject := &account.Account{MembershipType: account.MembershipFree}

	record := ledger.AppendPurchase(subject, account.PurchaseInput{
		Type: account.PurchasePremiumMonthly,
	})

	assert.Equal(t, account.MembershipPremium, subject.MembershipType)
	require.NotNil(t, subject.PremiumExpiry)

	// Expiry derives from the record's own timestamp: one calendar month out
	policy := account.MembershipPolicy{}
	expected := policy.ApplyPurchaseEffect(&account.Account{}, account.PurchasePremiumMonthly, record.Date)
	require.NotNil(t, expected)
	assert.True(t, subject.PremiumExpiry.Equal(*expected.PremiumExpiry))
}

/*
TestHistoryLedger_AppendConsultation verifies assignment and ordering for
consultation records.
*/
func TestHistoryLedger_AppendConsultation(t *testing.T) {
	ledger := account.NewHistoryLedger(kst)
	subject := &account.Account{}

	first := ledger.AppendConsultation(subject, account.ConsultationInput{
		Details: map[string]any{"topic": "career"},
	})
	second := ledger.AppendConsultation(subject, account.ConsultationInput{
		Details: map[string]any{"topic": "love"},
	})

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	require.Len(t, subject.ConsultationHistory, 2)
	assert.Equal(t, "love", subject.ConsultationHistory[0].Details["topic"])
	assert.Equal(t, "career", subject.ConsultationHistory[1].Details["topic"])
}

/*
TestHistoryLedger_CountToday verifies the per-day counter against a mixed
history: three records today, two yesterday, one tomorrow.
*/
func TestHistoryLedger_CountToday(t *testing.T) {
	ledger := account.NewHistoryLedger(kst)
	now := time.Date(2026, time.August, 28, 15, 0, 0, 0, kst)

	subject := &account.Account{
		ConsultationHistory: []account.ConsultationRecord{
			{ID: "c6", Date: time.Date(2026, time.August, 29, 0, 1, 0, 0, kst)},
			{ID: "c5", Date: time.Date(2026, time.August, 28, 23, 59, 0, 0, kst)},
			{ID: "c4", Date: time.Date(2026, time.August, 28, 9, 0, 0, 0, kst)},
			{ID: "c3", Date: time.Date(2026, time.August, 28, 0, 0, 1, 0, kst)},
			{ID: "c2", Date: time.Date(2026, time.August, 27, 23, 59, 59, 0, kst)},
			{ID: "c1", Date: time.Date(2026, time.August, 27, 8, 0, 0, 0, kst)},
		},
	}

	assert.Equal(t, 3, ledger.CountToday(subject, now))
	assert.Equal(t, 2, ledger.CountToday(subject, now.AddDate(0, 0, -1)))
	assert.Equal(t, 0, ledger.CountToday(subject, now.AddDate(0, 0, 10)))
}

/*
TestHistoryLedger_CountToday_ReferenceZone verifies that day boundaries are
computed in the reference zone, not in the zone the record was stored with.
*/
func TestHistoryLedger_CountToday_ReferenceZone(t *testing.T) {
	ledger := account.NewHistoryLedger(kst)

	// 2026-08-27 20:00 UTC is 2026-08-28 05:00 in the reference zone.
	subject := &account.Account{
		ConsultationHistory: []account.ConsultationRecord{
			{ID: "c1", Date: time.Date(2026, time.August, 27, 20, 0, 0, 0, time.UTC)},
		},
	}

	seoulMorning := time.Date(2026, time.August, 28, 9, 0, 0, 0, kst)
	assert.Equal(t, 1, ledger.CountToday(subject, seoulMorning))

	// In UTC terms the same instant is still Aug 27, but the reference
	// zone decides: nothing counted for Aug 27.
	previousDay := time.Date(2026, time.August, 27, 12, 0, 0, 0, kst)
	assert.Equal(t, 0, ledger.CountToday(subject, previousDay))
}

/*
TestHistoryLedger_DetailsCopied verifies that the ledger stores its own copy
of the details map, so later caller mutations never leak into history.
*/
func TestHistoryLedger_DetailsCopied(t *testing.T) {
	ledger := account.NewHistoryLedger(kst)
	subject := &account.Account{}

	details := map[string]any{"topic": "career"}
	ledger.AppendConsultation(subject, account.ConsultationInput{Details: details})

	details["topic"] = "mutated"
	assert.Equal(t, "career", subject.ConsultationHistory[0].Details["topic"])
}
