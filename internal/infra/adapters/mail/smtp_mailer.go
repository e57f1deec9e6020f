package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"org-subscription-saas/internal/config"
	"org-subscription-saas/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer sends plain-text mail over SMTP with PLAIN auth.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	log  *zerolog.Logger
}

func NewSMTPMailer(cfg *config.SMTPConfig, logger *zerolog.Logger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
		log:  logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		m.log.Error().Err(err).Str("to", to).Msg("smtp send failed")
		return err
	}
	m.log.Debug().Str("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer logs mail instead of sending it. Used in dev mode.
type NoopMailer struct {
	log *zerolog.Logger
}

func NewNoopMailer(logger *zerolog.Logger) *NoopMailer {
	return &NoopMailer{log: logger}
}

func (m *NoopMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("noop mail")
	return nil
}
