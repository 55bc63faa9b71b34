// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

/*
Package mail implements the secret-delivery collaborator.

The account service hands a temporary plaintext secret to this package during
the password-reset flow. Delivery mechanics are out of the engine's scope; this
package owns transport (SendGrid) and local fallback (structured log).
*/
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SecretDeliverer sends a single-use temporary secret to an account holder.
type SecretDeliverer interface {

	/*
		DeliverTemporarySecret hands the plaintext temporary secret to the
		account holder out-of-band. The secret is never persisted in plaintext.

		Parameters:
		  - context: context.Context
		  - email: string (recipient)
		  - temporarySecret: string (plaintext, single-use)

		Returns:
		  - error: Delivery failures
	*/
	DeliverTemporarySecret(context context.Context, email, temporarySecret string) error
}

// # SendGrid Deliverer

// SendGridDeliverer delivers temporary secrets by transactional email.
type SendGridDeliverer struct {
	client *sendgrid.Client
	from   string
	logger *slog.Logger
}

// NewSendGridDeliverer constructs a SendGrid-backed [SecretDeliverer].
func NewSendGridDeliverer(apiKey, from string, logger *slog.Logger) *SendGridDeliverer {
	return &SendGridDeliverer{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		logger: logger,
	}
}

/*
DeliverTemporarySecret sends the reset email through SendGrid.

Parameters:
  - context: context.Context
  - email: string
  - temporarySecret: string

Returns:
  - error: Transport failures or non-2xx SendGrid responses
*/
func (deliverer *SendGridDeliverer) DeliverTemporarySecret(context context.Context, email, temporarySecret string) error {

	// Build the transactional message
	from := sgmail.NewEmail("Sowon", deliverer.from)
	to := sgmail.NewEmail("", email)
	subject := "[Sowon] 임시 비밀번호 안내"
	plainText := fmt.Sprintf(
		"임시 비밀번호: %s\n로그인 후 반드시 비밀번호를 변경해 주세요.", temporarySecret)
	message := sgmail.NewSingleEmail(from, subject, to, plainText, "")

	// Send with the request-scoped context
	response, err := deliverer.client.SendWithContext(context, message)
	if err != nil {
		return fmt.Errorf("mail_sendgrid_send_failed: %w", err)
	}

	if response.StatusCode >= 300 {
		return fmt.Errorf("mail_sendgrid_rejected: status %d", response.StatusCode)
	}

	deliverer.logger.Info("temporary_secret_delivered",
		slog.String("email", email),
		slog.Int("status", response.StatusCode),
	)

	return nil
}

// # Log Deliverer

// LogDeliverer writes the temporary secret to the structured log instead of
// sending it. Development only — never enable in production.
type LogDeliverer struct {
	logger *slog.Logger
}

// NewLogDeliverer constructs the development fallback deliverer.
func NewLogDeliverer(logger *slog.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

// DeliverTemporarySecret logs the hand-off.
func (deliverer *LogDeliverer) DeliverTemporarySecret(context context.Context, email, temporarySecret string) error {
	deliverer.logger.Warn("temporary_secret_logged_not_sent",
		slog.String("email", email),
		slog.String("temporary_secret", temporarySecret),
	)
	return nil
}
