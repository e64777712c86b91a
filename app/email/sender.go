package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/config"
	"github.com/flowerssaints/storefront/app/logging"
)

// Sender delivers a rendered Email.
type Sender interface {
	Send(ctx context.Context, msg *Email) error
}

// Mailer renders a template for one recipient and sends it.
type Mailer struct {
	renderer *Renderer
	sender   Sender
	log      logrus.FieldLogger
}

func NewMailer(renderer *Renderer, sender Sender, log logrus.FieldLogger) *Mailer {
	return &Mailer{renderer: renderer, sender: sender, log: log}
}

func (m *Mailer) Send(ctx context.Context, to string, data Data) error {
	msg, err := m.renderer.Render(to, data)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending %s email to %s: %w", msg.Kind, logging.RedactEmail(to), err)
	}
	m.log.WithFields(logrus.Fields{
		"template": msg.Kind.String(),
		"to":       logging.RedactEmail(to),
	}).Debug("email sent")
	return nil
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg *Email) error {
	s.log.WithFields(logrus.Fields{
		"to":       logging.RedactEmail(msg.To),
		"subject":  msg.Subject,
		"template": msg.Kind.String(),
		"bytes":    len(msg.HTML),
	}).Info("email not delivered (log sender)")
	return nil
}

// NewSenderFromConfig picks the transport named by cfg.Provider.
func NewSenderFromConfig(ctx context.Context, cfg config.EmailConfig, log logrus.FieldLogger) (Sender, error) {
	switch cfg.Provider {
	case "ses":
		return NewSESSender(ctx, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.SESRegion)
	case "smtp":
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass), nil
	case "", "log":
		return NewLogSender(log), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
}
