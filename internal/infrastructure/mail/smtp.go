// Package mail delivers rendered receipts.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// Config holds the SMTP relay settings.
type Config struct {
	Sender   string
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPMailer sends receipts through an SMTP relay.
type SMTPMailer struct {
	cfg    Config
	client *gomail.Client
	log    zerolog.Logger
}

// NewSMTPMailer builds the SMTP client. Authentication is enabled only when a
// username is configured.
func NewSMTPMailer(cfg Config, log zerolog.Logger) (*SMTPMailer, error) {
	if cfg.Sender == "" {
		return nil, errors.New("mail sender is required")
	}
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{cfg: cfg, client: client, log: log}, nil
}

// Send delivers msg with its receipt attached.
func (m *SMTPMailer) Send(ctx context.Context, msg ports.ReceiptEmail) error {
	out, err := buildMessage(m.cfg.Sender, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("receipt email sent")
	return nil
}

func buildMessage(sender string, msg ports.ReceiptEmail) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(sender); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.AddToFormat(msg.ToName, msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if len(msg.Attachment) > 0 {
		if err := out.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return nil, fmt.Errorf("attach receipt: %w", err)
		}
	}
	return out, nil
}

// LogMailer only logs receipts. It is used when no SMTP host is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.ReceiptEmail) error {
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("attachment", msg.AttachmentName).
		Int("attachment_bytes", len(msg.Attachment)).
		Msg("smtp not configured, receipt logged only")
	return nil
}
