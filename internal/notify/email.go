package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender is the outbound mail dependency. Implementations can be
// swapped without touching callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // plain text
	HTML    string // optional
}

// SendGridSender delivers through the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       zerolog.Logger
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

func NewSendGridSender(cfg SendGridConfig, log zerolog.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.FromName == "" {
		cfg.FromName = "Clinic Bookings"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		log:       log,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	body := msg.Body
	html := msg.HTML
	if html == "" {
		html = body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, body, html)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	s.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// StubSender logs instead of sending; used in dev and tests.
type StubSender struct {
	log zerolog.Logger
}

func NewStubSender(log zerolog.Logger) *StubSender {
	return &StubSender{log: log}
}

func (s *StubSender) Send(ctx context.Context, msg EmailMessage) error {
	s.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("stub email sender: would send")
	return nil
}
