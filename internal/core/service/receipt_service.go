package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	// Claim records token and reports whether it was seen for the first time.
	Claim(ctx context.Context, token string) (bool, error)
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`PURCHASE RECEIPT
================

Buyer:        {{.Name}} <{{.Email}}>
Event:        {{.EventName}}
Date:         {{.EventDate}}
Location:     {{.EventCity}}, {{.EventCountry}}
{{- if .RegistrationID}}
Registration: {{.RegistrationID}}
{{- end}}
{{- if .Quantity}}
Tickets:      {{.Quantity}}
{{- end}}

Issued at {{.IssuedAt}}.
Present this receipt at the venue entrance.
`))

type receiptView struct {
	domain.PurchaseNotification
	IssuedAt string
}

// ReceiptOutcome classifies how a single record was handled.
type ReceiptOutcome string

const (
	OutcomeSent      ReceiptOutcome = "sent"
	OutcomeMailError ReceiptOutcome = "mail_error"
	OutcomeDuplicate ReceiptOutcome = "duplicate"
	OutcomeMalformed ReceiptOutcome = "malformed"
)

type receiptService struct {
	mailer  ports.Mailer
	dedup   DedupChecker
	log     zerolog.Logger
	now     func() time.Time
	observe func(ReceiptOutcome)
}

// ReceiptOption customizes the receipt service.
type ReceiptOption func(*receiptService)

// WithOutcomeObserver registers a callback invoked once per processed record.
func WithOutcomeObserver(fn func(ReceiptOutcome)) ReceiptOption {
	return func(s *receiptService) { s.observe = fn }
}

// NewReceiptService returns a ReceiptService. dedup may be nil.
func NewReceiptService(mailer ports.Mailer, dedup DedupChecker, log zerolog.Logger, opts ...ReceiptOption) ports.ReceiptService {
	s := &receiptService{
		mailer:  mailer,
		dedup:   dedup,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		observe: func(ReceiptOutcome) {},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProcessBatch handles every record independently. Only malformed records are
// reported as failures; delivery problems are logged.
func (s *receiptService) ProcessBatch(ctx context.Context, records []ports.QueueRecord) ports.BatchResult {
	s.log.Info().Int("records", len(records)).Msg("received receipt batch")

	result := ports.BatchResult{BatchItemFailures: []ports.BatchItemFailure{}}
	for _, rec := range records {
		outcome := s.process(ctx, rec)
		s.observe(outcome)
		if outcome == OutcomeMalformed {
			result.BatchItemFailures = append(result.BatchItemFailures, ports.BatchItemFailure{ItemIdentifier: rec.ID})
		}
	}

	s.log.Info().Int("failures", len(result.BatchItemFailures)).Msg("receipt batch done")
	return result
}

func (s *receiptService) process(ctx context.Context, rec ports.QueueRecord) ReceiptOutcome {
	var note domain.PurchaseNotification
	if err := json.Unmarshal([]byte(rec.Body), &note); err != nil || note.IsZero() {
		s.log.Warn().Str("message_id", rec.ID).Str("body", rec.Body).Msg("invalid JSON in queue record")
		return OutcomeMalformed
	}

	if rec.DedupID != "" && s.dedup != nil {
		first, err := s.dedup.Claim(ctx, rec.DedupID)
		if err != nil {
			s.log.Warn().Err(err).Str("message_id", rec.ID).Msg("dedup check failed, sending anyway")
		} else if !first {
			s.log.Debug().Str("message_id", rec.ID).Str("dedup_id", rec.DedupID).Msg("duplicate receipt skipped")
			return OutcomeDuplicate
		}
	}

	s.log.Info().
		Str("message_id", rec.ID).
		Str("event_name", note.EventName).
		Str("date", note.EventDate).
		Str("country", note.EventCountry).
		Str("city", note.EventCity).
		Str("name", note.Name).
		Str("email", note.Email).
		Msg("processing receipt")

	if strings.TrimSpace(note.Email) == "" {
		s.log.Warn().Str("message_id", rec.ID).Msg("receipt has no recipient, skipping email")
		return OutcomeMailError
	}

	msg, err := s.render(note)
	if err != nil {
		s.log.Error().Err(err).Str("message_id", rec.ID).Msg("failed to render receipt")
		return OutcomeMailError
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("message_id", rec.ID).Str("email", note.Email).Msg("failed to send receipt email")
		return OutcomeMailError
	}
	return OutcomeSent
}

func (s *receiptService) render(note domain.PurchaseNotification) (ports.ReceiptEmail, error) {
	var buf bytes.Buffer
	view := receiptView{PurchaseNotification: note, IssuedAt: s.now().Format(time.RFC3339)}
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return ports.ReceiptEmail{}, fmt.Errorf("render receipt: %w", err)
	}

	name := "receipt.txt"
	if note.RegistrationID != "" {
		name = "receipt-" + note.RegistrationID + ".txt"
	}
	greeting := "Hi"
	if note.Name != "" {
		greeting = "Hi " + note.Name
	}
	return ports.ReceiptEmail{
		To:             note.Email,
		ToName:         note.Name,
		Subject:        fmt.Sprintf("Your tickets for %s", note.EventName),
		Body:           fmt.Sprintf("%s,\n\nThanks for your purchase. Your receipt for %s is attached.\n", greeting, note.EventName),
		AttachmentName: name,
		Attachment:     buf.Bytes(),
	}, nil
}
