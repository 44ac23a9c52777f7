package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"civic-backend/internal/config"
)

// HTTPMailer posts messages to a transactional mail API as JSON.
type HTTPMailer struct {
	client *resty.Client
	from   string
	log    zerolog.Logger
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type apiError struct {
	Message string `json:"message"`
}

func NewHTTPMailer(cfg config.MailConfig, log zerolog.Logger) *HTTPMailer {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &HTTPMailer{client: client, from: cfg.From, log: log}
}

func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	var apiErr apiError
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(sendRequest{From: m.from, To: msg.To, Subject: msg.Subject, HTML: msg.HTML}).
		SetError(&apiErr).
		Post("")
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if resp.IsError() {
		m.log.Error().Int("status", resp.StatusCode()).Str("to", msg.To).Str("msg", apiErr.Message).Msg("mail api rejected message")
		return fmt.Errorf("send mail: api status %d: %s", resp.StatusCode(), apiErr.Message)
	}
	m.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail sent")
	return nil
}
