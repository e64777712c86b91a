package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	dialer Dialer
}

func NewSMTPSender(host string, port int, user, pass string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, pass)}
}

func NewSMTPSenderWithDialer(d Dialer) *SMTPSender {
	return &SMTPSender{dialer: d}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
