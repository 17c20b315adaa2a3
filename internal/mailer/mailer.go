package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/icl-edu/course-inquiry-api/pkg/config"
)

// Sender delivers a single HTML email. Failures are reported, never fatal.
type Sender interface {
	Send(to, subject, html string) error
}

// SMTPSender delivers mail through the configured SMTP relay.
type SMTPSender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSMTPSender builds a sender, or nil when SMTP is not configured.
// Callers must treat a nil sender as ServiceUnavailable.
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) *SMTPSender {
	if !cfg.Configured() {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send dials the relay and delivers one message.
func (s *SMTPSender) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.FromAddress, s.cfg.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
