// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/sowondev/sowon/internal/platform/apperr"
	"github.com/sowondev/sowon/internal/platform/mail"
	"github.com/sowondev/sowon/internal/platform/sec"
	"github.com/sowondev/sowon/internal/platform/validate"
	"github.com/sowondev/sowon/pkg/pointer"
	"github.com/sowondev/sowon/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given account.
	//
	// # Parameters
	//   - accountID: The ID of the account.
	//   - email: The email of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(accountID, email string, timeToLive time.Duration) (string, error)
}

// Service implements the account-management use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to credential encoding,
// registration, or login logic must be reviewed by the security team.
type Service struct {
	repository    Repository
	codec         sec.CredentialCodec
	sessions      *SessionManager
	ledger        *HistoryLedger
	policy        MembershipPolicy
	deliverer     mail.SecretDeliverer
	tokenProvider TokenProvider
	logger        *slog.Logger

	now func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
// tokenProvider may be nil when no HTTP token surface is wired (tests).
func NewService(
	repository Repository,
	codec sec.CredentialCodec,
	sessions *SessionManager,
	ledger *HistoryLedger,
	deliverer mail.SecretDeliverer,
	tokenProvider TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository:    repository,
		codec:         codec,
		sessions:      sessions,
		ledger:        ledger,
		deliverer:     deliverer,
		tokenProvider: tokenProvider,
		logger:        logger,
		now:           time.Now,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email        string
	Secret       string
	DisplayName  string
	Phone        string
	BirthDate    string
	BirthTime    string
	Gender       string
	CalendarType CalendarType
}

/*
Register validates, encodes, and persists a brand new account.

Description: Checks run in a fixed order — required fields, email shape,
secret length, phone shape — then email uniqueness. The first violation wins.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Redacted created entity
  - err: Validation, EmailConflict, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {

	// Ordered validation: required → email shape → secret length → phone shape.
	validator := &validate.Validator{}
	validator.
		Required(FieldEmail, input.Email).
		Required(FieldSecret, input.Secret).
		Required(FieldDisplayName, input.DisplayName).
		EmailShape(FieldEmail, input.Email).
		MinLen(FieldSecret, input.Secret, SecretMinLength).
		KoreanPhone(FieldPhone, input.Phone).
		MaxLen(FieldDisplayName, input.DisplayName, DisplayNameMaxLength)

	if input.CalendarType != "" {
		validator.OneOf(FieldCalendarType, string(input.CalendarType),
			string(CalendarSolar), string(CalendarLunar))
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Uniqueness is checked last, after shape validation.
	if _, err := service.repository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.EmailConflict()
	} else if !apperr.IsCode(err, "NOT_FOUND") {
		return nil, err
	}

	// Derive the stored verifier; plaintext is never persisted.
	verifier, err := service.codec.Encode(input.Secret)
	if err != nil {
		return nil, fmt.Errorf("account_service_encode_failed: %w", err)
	}

	calendarType := input.CalendarType
	if calendarType == "" {
		calendarType = CalendarSolar
	}

	// Construct the new Account entity. Time-sortable ID, free tier defaults.
	created := &Account{
		ID:                  uuid.New(),
		Email:               input.Email,
		CredentialVerifier:  verifier,
		DisplayName:         norm.NFC.String(input.DisplayName),
		Phone:               input.Phone,
		BirthDate:           input.BirthDate,
		BirthTime:           input.BirthTime,
		Gender:              input.Gender,
		CalendarType:        calendarType,
		MembershipType:      MembershipFree,
		PremiumExpiry:       nil,
		CreatedAt:           service.now(),
		PurchaseHistory:     []PurchaseRecord{},
		ConsultationHistory: []ConsultationRecord{},
	}

	if err := service.repository.Upsert(context, created); err != nil {
		return nil, fmt.Errorf("account_service_register_failed: %w", err)
	}

	return created.Redacted(), nil
}

// # Authentication Flow

// LoginSession represents a successfully established session.
type LoginSession struct {
	AccessToken string
	Account     *Account
}

/*
Login validates credentials, updates lastLogin, and publishes the session.

Parameters:
  - context: context.Context
  - email: string
  - secret: string

Returns:
  - *LoginSession: Redacted account plus transport token
  - err: Validation, NotFound, InvalidCredentials, or storage failures
*/
func (service *Service) Login(context context.Context, email, secret string) (*LoginSession, error) {

	// Both credentials must be present before any lookup.
	if err := (&validate.Validator{}).
		Required(FieldEmail, email).
		Required(FieldSecret, secret).
		Err(); err != nil {
		return nil, err
	}

	// Missing account is reported as such; this mirrors the original
	// client behavior rather than an enumeration-safe generic message.
	found, err := service.repository.FindByEmail(context, email)
	if err != nil {
		return nil, err
	}

	if !service.codec.Matches(secret, found.CredentialVerifier) {
		return nil, apperr.InvalidCredentials()
	}

	// Record the successful authentication.
	found.LastLogin = service.now()
	if err := service.repository.Upsert(context, found); err != nil {
		return nil, fmt.Errorf("account_service_login_persist_failed: %w", err)
	}

	// Publish the redacted snapshot as the current session.
	if err := service.sessions.Publish(context, found); err != nil {
		return nil, fmt.Errorf("account_service_session_publish_failed: %w", err)
	}

	// Generate a short-lived Access Token for the HTTP surface.
	accessToken := ""
	if service.tokenProvider != nil {
		accessToken, err = service.tokenProvider.GenerateAccessToken(found.ID, found.Email, AccessTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("account_service_token_generation_failed: %w", err)
		}
	}

	return &LoginSession{
		AccessToken: accessToken,
		Account:     found.Redacted(),
	}, nil
}

/*
Logout clears the current session.

Description: Clearing an already-empty session is a no-op success
(idempotent operation).

Parameters:
  - context: context.Context

Returns:
  - err: Storage failures only
*/
func (service *Service) Logout(context context.Context) error {
	return service.sessions.Clear(context)
}

// # Profile Management

// UpdatePatch enumerates the mutable account fields. Only non-nil fields are
// applied; the ID, histories, and membership state can never be overwritten
// through an update.
type UpdatePatch struct {
	Email        *string
	Secret       *string
	DisplayName  *string
	Phone        *string
	BirthDate    *string
	BirthTime    *string
	Gender       *string
	CalendarType *CalendarType
}

/*
Update applies a field-enumerated patch to an existing account.

Description: A new secret is routed through the credential codec before
storage. An email change re-checks uniqueness against every other account.
If the published session references this account, the redacted result is
republished.

Parameters:
  - context: context.Context
  - id: string
  - patch: UpdatePatch

Returns:
  - *Account: Redacted updated entity
  - err: NotFound, EmailConflict, validation, or storage failures
*/
func (service *Service) Update(context context.Context, id string, patch UpdatePatch) (*Account, error) {
	found, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	// Validate only the fields present in the patch.
	validator := &validate.Validator{}
	if patch.Email != nil {
		validator.Required(FieldEmail, *patch.Email).EmailShape(FieldEmail, *patch.Email)
	}
	if patch.Secret != nil {
		validator.Required(FieldSecret, *patch.Secret).MinLen(FieldSecret, *patch.Secret, SecretMinLength)
	}
	if patch.Phone != nil {
		validator.KoreanPhone(FieldPhone, *patch.Phone)
	}
	if patch.CalendarType != nil {
		validator.OneOf(FieldCalendarType, string(*patch.CalendarType),
			string(CalendarSolar), string(CalendarLunar))
	}
	if patch.DisplayName != nil {
		validator.Required(FieldDisplayName, *patch.DisplayName).
			MaxLen(FieldDisplayName, *patch.DisplayName, DisplayNameMaxLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Email uniqueness against every other account. A failed read here must
	// surface: assuming "no conflict" on a storage error could hand the same
	// email to two accounts.
	if patch.Email != nil && *patch.Email != found.Email {
		existing, err := service.repository.FindByEmail(context, *patch.Email)
		if err == nil && existing.ID != found.ID {
			return nil, apperr.EmailConflict()
		}
		if err != nil && !apperr.IsCode(err, "NOT_FOUND") {
			return nil, err
		}
		found.Email = *patch.Email
	}

	// A new secret is encoded, never stored as given.
	if patch.Secret != nil {
		verifier, err := service.codec.Encode(*patch.Secret)
		if err != nil {
			return nil, fmt.Errorf("account_service_encode_failed: %w", err)
		}
		found.CredentialVerifier = verifier
	}

	if patch.DisplayName != nil {
		found.DisplayName = norm.NFC.String(*patch.DisplayName)
	}
	found.Phone = pointer.Fallback(patch.Phone, found.Phone)
	found.BirthDate = pointer.Fallback(patch.BirthDate, found.BirthDate)
	found.BirthTime = pointer.Fallback(patch.BirthTime, found.BirthTime)
	found.Gender = pointer.Fallback(patch.Gender, found.Gender)
	if patch.CalendarType != nil {
		found.CalendarType = *patch.CalendarType
	}

	if err := service.repository.Upsert(context, found); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	if err := service.republishIfActive(context, found); err != nil {
		return nil, err
	}

	return found.Redacted(), nil
}

// # Password Recovery

/*
ResetPassword generates a temporary secret for the account and hands its
plaintext to the delivery collaborator.

Description: Only the encoded verifier is persisted. The plaintext is
returned solely for the collaborator hand-off; a delivery failure is logged
but does not fail the reset, since the verifier is already rotated.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: The temporary plaintext secret
  - err: NotFound or storage failures
*/
func (service *Service) ResetPassword(context context.Context, email string) (string, error) {
	found, err := service.repository.FindByEmail(context, email)
	if err != nil {
		return "", err
	}

	temporarySecret, err := sec.GenerateTemporarySecret()
	if err != nil {
		return "", fmt.Errorf("account_service_generate_secret_failed: %w", err)
	}

	verifier, err := service.codec.Encode(temporarySecret)
	if err != nil {
		return "", fmt.Errorf("account_service_encode_failed: %w", err)
	}

	found.CredentialVerifier = verifier
	if err := service.repository.Upsert(context, found); err != nil {
		return "", fmt.Errorf("account_service_reset_persist_failed: %w", err)
	}

	// Out-of-band side effect: hand the plaintext to the deliverer.
	if err := service.deliverer.DeliverTemporarySecret(context, found.Email, temporarySecret); err != nil {
		service.logger.Warn("temporary_secret_delivery_failed",
			slog.String("email", found.Email),
			slog.String("error", err.Error()),
		)
	}

	return temporarySecret, nil
}

// # Derived Profile

/*
SaveProfileData stores the externally computed profile blob and its
computation timestamp, republishing the session if this account is active.

Parameters:
  - context: context.Context
  - accountID: string
  - data: json.RawMessage (opaque)

Returns:
  - *Account: Redacted updated entity
  - err: NotFound or storage failures
*/
func (service *Service) SaveProfileData(context context.Context, accountID string, data json.RawMessage) (*Account, error) {
	found, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	computedAt := service.now()
	found.ProfileData = append(json.RawMessage(nil), data...)
	found.ProfileComputedAt = &computedAt

	if err := service.repository.Upsert(context, found); err != nil {
		return nil, fmt.Errorf("account_service_save_profile_failed: %w", err)
	}

	if err := service.republishIfActive(context, found); err != nil {
		return nil, err
	}

	return found.Redacted(), nil
}

// # Metered History

/*
AppendPurchase records a purchase against the account. Entitlement-bearing
types (premium_monthly, premium_yearly) upgrade the membership in the same
persisted mutation.

Parameters:
  - context: context.Context
  - accountID: string
  - input: PurchaseInput

Returns:
  - *PurchaseRecord: The appended record (ledger-assigned id/date)
  - err: NotFound or storage failures
*/
func (service *Service) AppendPurchase(context context.Context, accountID string, input PurchaseInput) (*PurchaseRecord, error) {
	found, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	record := service.ledger.AppendPurchase(found, input)

	if err := service.repository.Upsert(context, found); err != nil {
		return nil, fmt.Errorf("account_service_append_purchase_failed: %w", err)
	}

	if err := service.republishIfActive(context, found); err != nil {
		return nil, err
	}

	return &record, nil
}

/*
AppendConsultation records a consultation against the account.

Parameters:
  - context: context.Context
  - accountID: string
  - input: ConsultationInput

Returns:
  - *ConsultationRecord: The appended record (ledger-assigned id/date)
  - err: NotFound or storage failures
*/
func (service *Service) AppendConsultation(context context.Context, accountID string, input ConsultationInput) (*ConsultationRecord, error) {
	found, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	record := service.ledger.AppendConsultation(found, input)

	if err := service.repository.Upsert(context, found); err != nil {
		return nil, fmt.Errorf("account_service_append_consultation_failed: %w", err)
	}

	if err := service.republishIfActive(context, found); err != nil {
		return nil, err
	}

	return &record, nil
}

/*
ConsultationsToday returns the number of consultations the account has
recorded on the current calendar day (fixed reference time zone).

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - int: Today's consultation count
  - err: NotFound or storage failures
*/
func (service *Service) ConsultationsToday(context context.Context, accountID string) (int, error) {
	found, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return 0, err
	}

	return service.ledger.CountToday(found, service.now()), nil
}

// # Queries

/*
GetAccount returns the redacted account for the given ID.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: Redacted entity
  - err: NotFound or storage failures
*/
func (service *Service) GetAccount(context context.Context, accountID string) (*Account, error) {
	found, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}
	return found.Redacted(), nil
}

/*
IsPremiumActive reports whether the account's premium entitlement is active
right now.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - bool: Entitlement state
  - err: NotFound or storage failures
*/
func (service *Service) IsPremiumActive(context context.Context, accountID string) (bool, error) {
	found, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return false, err
	}
	return service.policy.IsPremiumActive(found, service.now()), nil
}

// CurrentSession returns the last-published redacted session snapshot,
// or nil when no session is active.
func (service *Service) CurrentSession(context context.Context) (*Account, error) {
	return service.sessions.Current(context)
}

// republishIfActive refreshes the published session snapshot when it
// references the given account.
func (service *Service) republishIfActive(context context.Context, updated *Account) error {
	current, err := service.sessions.Current(context)
	if err != nil {
		return err
	}
	if current == nil || current.ID != updated.ID {
		return nil
	}

	if err := service.sessions.Publish(context, updated); err != nil {
		return fmt.Errorf("account_service_session_republish_failed: %w", err)
	}
	return nil
}
