// Package mail implements the SMTP egress transport.
package mail

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/sheetflow/listener/internal/application/listener"
)

// GomailSender sends messages through an SMTP relay. A fresh authenticated
// session is dialed per send with the credentials resolved for that
// delivery; nothing is cached between sends.
type GomailSender struct {
	host   string
	port   int
	logger *zap.Logger

	// dial is swappable for tests
	dial func(username, password string, m *gomail.Message) error
}

// NewGomailSender creates a sender for the given relay
func NewGomailSender(host string, port int, logger *zap.Logger) *GomailSender {
	s := &GomailSender{
		host:   host,
		port:   port,
		logger: logger,
	}
	s.dial = func(username, password string, m *gomail.Message) error {
		return gomail.NewDialer(s.host, s.port, username, password).DialAndSend(m)
	}
	return s
}

// Send delivers one message. The send is awaited to completion; no retry
// is attempted on failure.
func (s *GomailSender) Send(ctx context.Context, creds listener.MailCredentials, msg listener.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("mail: credentials are required")
	}

	m := buildMessage(msg)

	if err := s.dial(creds.Username, creds.Password, m); err != nil {
		return fmt.Errorf("mail: failed to send via %s:%d: %w", s.host, s.port, err)
	}

	s.logger.Info("mail sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}

// buildMessage converts the transport-agnostic message into a gomail one
func buildMessage(msg listener.MailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	for _, att := range msg.Attachments {
		data := att.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}))
		}
		m.Attach(att.Filename, settings...)
	}

	return m
}

// Ensure GomailSender implements the application-layer port
var _ listener.MailSender = (*GomailSender)(nil)
