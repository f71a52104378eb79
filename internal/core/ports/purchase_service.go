package ports

import "context"

// PurchaseInput is the purchase request after transport decoding.
// RegistrationID is optional; clients reuse it to make retries idempotent.
type PurchaseInput struct {
	UserID         string
	EventID        string
	Quantity       int
	RegistrationID string
}

// PurchaseResult is returned on a committed purchase.
type PurchaseResult struct {
	RegistrationID string
	EventID        string
	UserID         string
	Quantity       int
	// Warning is set when a best-effort follow-up failed. The purchase still stands.
	Warning string
}

// PurchaseService is the purchase coordinator.
type PurchaseService interface {
	Purchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error)
}
