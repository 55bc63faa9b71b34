// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account

import "time"

// # Purchase Types

// Purchase types that carry a membership effect. Any other type is an
// ordinary metered purchase with no entitlement change.
const (
	PurchasePremiumMonthly = "premium_monthly"
	PurchasePremiumYearly  = "premium_yearly"
)

// # Membership Policy

// MembershipPolicy derives premium/free entitlement from tier plus expiry
// and computes the effect of entitlement-bearing purchases.
//
// All methods are pure; the policy holds no state.
type MembershipPolicy struct{}

// MembershipPatch is the field-enumerated result of a purchase effect.
// Applying it never touches any other account field.
type MembershipPatch struct {
	MembershipType MembershipType
	PremiumExpiry  *time.Time
}

/*
IsPremiumActive reports whether the account is entitled to premium features
at the given instant.

Description: false for free accounts regardless of any stale expiry value.
A nil expiry on a premium account means non-expiring premium.

Parameters:
  - account: *Account
  - now: time.Time

Returns:
  - bool: true iff the premium entitlement is active at now
*/
func (policy MembershipPolicy) IsPremiumActive(account *Account, now time.Time) bool {
	if account.MembershipType != MembershipPremium {
		return false
	}
	if account.PremiumExpiry == nil {
		return true
	}
	return account.PremiumExpiry.After(now)
}

/*
ApplyPurchaseEffect computes the membership change implied by a purchase.

Description: premium_monthly sets expiry to now + 1 calendar month,
premium_yearly to now + 12 calendar months; both upgrade the tier to premium.
Calendar-month arithmetic preserves the day-of-month where possible and
clamps to the last day of the target month (Jan 31 + 1 month = Feb 28/29).
Other purchase types produce no membership change.

Parameters:
  - account: *Account (read-only)
  - purchaseType: string
  - now: time.Time

Returns:
  - *MembershipPatch: The patch to apply, or nil when the type has no effect
*/
func (policy MembershipPolicy) ApplyPurchaseEffect(account *Account, purchaseType string, now time.Time) *MembershipPatch {
	var months int

	switch purchaseType {
	case PurchasePremiumMonthly:
		months = 1
	case PurchasePremiumYearly:
		months = 12
	default:
		return nil
	}

	expiry := addMonthsClamped(now, months)
	return &MembershipPatch{
		MembershipType: MembershipPremium,
		PremiumExpiry:  &expiry,
	}
}

// Apply writes the patch onto the account.
func (patch *MembershipPatch) Apply(account *Account) {
	account.MembershipType = patch.MembershipType
	account.PremiumExpiry = patch.PremiumExpiry
}

// addMonthsClamped advances t by whole calendar months, preserving the
// day-of-month where possible and clamping to the last valid day of the
// target month. Go's AddDate normalizes overflow (Jan 31 + 1 month = Mar 2/3),
// which is not the contract here.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()

	// First day of the target month; time.Date normalizes month overflow.
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())

	// Day 0 of the following month is the last day of the target month.
	lastDay := time.Date(firstOfTarget.Year(), firstOfTarget.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		hour, minute, second, t.Nanosecond(), t.Location())
}
