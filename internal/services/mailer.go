package services

import (
	"context"
	"fmt"
	"net/smtp"

	"internhub/internal/config"

	"go.uber.org/zap"
)

// Mailer delivers outbound email. Implementations must not block the
// caller beyond handing the message to the relay.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	config config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a Mailer backed by a plain SMTP relay
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{config: cfg, logger: logger}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	message := fmt.Sprintf("From: %s\r\n", m.config.From)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=\"utf-8\"\r\n"
	message += "\r\n" + body

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(message)); err != nil {
		m.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Debug("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// noopMailer is used when no SMTP relay is configured
type noopMailer struct {
	logger *zap.Logger
}

// NewNoopMailer creates a Mailer that logs instead of sending
func NewNoopMailer(logger *zap.Logger) Mailer {
	return &noopMailer{logger: logger}
}

func (m *noopMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("Email delivery disabled, dropping message",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
