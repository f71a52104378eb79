package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// Notifier hands a purchase notification off for asynchronous delivery.
// It must not block on the transport.
type Notifier interface {
	Notify(ctx context.Context, n domain.PurchaseNotification) error
}

// NotificationPublisher writes a notification to the queue transport.
type NotificationPublisher interface {
	Publish(ctx context.Context, n domain.PurchaseNotification) error
}

// Mailer delivers a rendered receipt.
type Mailer interface {
	Send(ctx context.Context, msg ReceiptEmail) error
}

// ReceiptEmail is a rendered receipt ready to send.
type ReceiptEmail struct {
	To             string
	ToName         string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}
