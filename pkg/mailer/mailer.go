// Package mailer delivers plain-text transactional email.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/meditrack/meditrack-backend/config"
	"github.com/meditrack/meditrack-backend/pkg/logger"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the SMTP sender when a host is configured and the log-only
// sender otherwise.
func New(cfg config.SMTPConfig) Sender {
	if !cfg.Enabled() {
		logger.Warn("SMTP is not configured, emails will only be logged", nil)
		return LogSender{LogBody: cfg.LogBodies}
	}
	return NewSMTPSender(cfg)
}

// SMTPSender sends mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	addr     string
	host     string
	from     string
	auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		host:     cfg.Host,
		from:     from,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := buildMessage(s.from, msg)
	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(s.addr, s.auth, s.from, []string{msg.To}, body)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			logger.Error("Failed to send email", err, logger.Fields{
				"to":      msg.To,
				"subject": msg.Subject,
				"host":    s.host,
			})
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	logger.Info("Email sent", logger.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

// LogSender records that a message would have been sent. The body carries
// one-time codes, so it is only logged when LogBody is set.
type LogSender struct {
	LogBody bool
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	fields := logger.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}
	if s.LogBody {
		fields["body"] = msg.Text
	}
	logger.Info("[DEV MODE] Email not sent, SMTP disabled", fields)
	return nil
}

func validate(msg Message) error {
	if msg.To == "" {
		return errors.New("email recipient is empty")
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return errors.New("email header contains a line break")
	}
	return nil
}

func buildMessage(from string, msg Message) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, msg.To, msg.Subject, msg.Text,
	))
}
