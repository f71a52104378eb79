package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/core/ports"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("tickets@example.com", ports.ReceiptEmail{
		To:             "ana@example.com",
		ToName:         "Ana",
		Subject:        "Your tickets for Feria",
		Body:           "Hi Ana",
		AttachmentName: "receipt-R1.txt",
		Attachment:     []byte("PURCHASE RECEIPT"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"tickets@example.com", "ana@example.com", "Your tickets for Feria", "receipt-R1.txt"} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	if _, err := buildMessage("tickets@example.com", ports.ReceiptEmail{To: "not an address"}); err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}

func TestNewSMTPMailerRequiresSender(t *testing.T) {
	if _, err := NewSMTPMailer(Config{Host: "localhost", Port: 25}, zerolog.Nop()); err == nil {
		t.Fatal("expected error without sender")
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))
	if err := m.Send(context.Background(), ports.ReceiptEmail{To: "ana@example.com", Subject: "s"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "ana@example.com") {
		t.Errorf("log output %q", buf.String())
	}
}
