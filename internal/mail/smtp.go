package mail

import (
	"fmt"
	"net/smtp"

	"github.com/easygrow/plantcore/internal/config"
	"go.uber.org/zap"
)

// Mailer sends a plain-text message to one recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail over authenticated SMTP. When the mail section
// is disabled in config it becomes a no-op, which keeps registration
// working in environments without mail credentials.
type SMTPMailer struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

func NewSMTPMailer(cfg config.EmailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.cfg.Enabled {
		m.logger.Debug("Mail disabled, skipping send", zap.String("to", to))
		return nil
	}

	password := m.cfg.GetPassword()
	if password == "" {
		return fmt.Errorf("mail password env %s not set", m.cfg.PasswordEnv)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.From, password, m.cfg.Host)

	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
