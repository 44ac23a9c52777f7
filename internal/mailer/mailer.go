// Package mailer delivers account emails. Without an API configured, messages
// are only logged, which is enough for local development.
package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"civic-backend/internal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// New picks the HTTP mailer when an API URL is configured.
func New(cfg config.MailConfig, log zerolog.Logger) Mailer {
	if cfg.APIURL == "" {
		return NewLogMailer(log)
	}
	return NewHTTPMailer(cfg, log)
}

// VerificationMessage is the email sent after registration.
func VerificationMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Verify your email",
		HTML: fmt.Sprintf(
			`<p>Thanks for registering. Please verify your email by clicking the link below:</p>`+
				`<p><a href="%s">%s</a></p>`, link, link),
	}
}

type LogMailer struct{ log zerolog.Logger }

func NewLogMailer(log zerolog.Logger) *LogMailer { return &LogMailer{log: log} }

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Str("body", msg.HTML).Msg("mail not sent, no mail api configured")
	return nil
}
