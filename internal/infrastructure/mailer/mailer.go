package mailer

import (
	"context"
	"fmt"
	"strings"

	"dental-booking/config"

	"github.com/sirupsen/logrus"
)

// Sender delivers one email. Implementations can be swapped (SendGrid, SMTP,
// log-only) without changing callers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// NewSender picks the delivery backend named by cfg.Driver. Unknown drivers
// and incomplete configuration fall back to the log-only sender.
func NewSender(cfg config.MailConfig, log *logrus.Logger) Sender {
	switch strings.ToLower(cfg.Driver) {
	case "sendgrid":
		if s := NewSendGridSender(cfg, log); s != nil {
			return s
		}
		log.Warn("MAIL_DRIVER=sendgrid but SENDGRID_API_KEY is empty, emails will only be logged")
	case "smtp":
		if cfg.SMTPHost != "" {
			return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.FromEmail)
		}
		log.Warn("MAIL_DRIVER=smtp but SMTP_HOST is empty, emails will only be logged")
	case "", "log":
	default:
		log.Warnf("Unknown MAIL_DRIVER %q, emails will only be logged", cfg.Driver)
	}
	return NewLogSender(log)
}

// LogSender is a no-op sender for development or when email is disabled.
type LogSender struct {
	log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}
	s.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Email delivery disabled, logging instead")
	return nil
}
