package mailer

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Mailer delivers one-time codes. Delivery infrastructure is an external
// collaborator; the service only depends on this interface.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogMailer writes codes to the log instead of sending mail. Used for
// local development and tests.
type LogMailer struct{}

// NewLogMailer creates a new log mailer
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendOTP logs the code instead of delivering it
func (m *LogMailer) SendOTP(ctx context.Context, email, code string) error {
	log.Info().Str("email", email).Str("code", code).Msg("OTP issued (log mailer)")
	return nil
}
