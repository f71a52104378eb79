package ports

import "context"

// QueueRecord is one delivered queue entry.
type QueueRecord struct {
	ID      string
	Body    string
	DedupID string
}

// BatchItemFailure identifies a record that must be redelivered.
type BatchItemFailure struct {
	ItemIdentifier string `json:"itemIdentifier"`
}

// BatchResult lists the records of a batch that failed and must not be acknowledged.
type BatchResult struct {
	BatchItemFailures []BatchItemFailure `json:"batchItemFailures"`
}

// Failed reports whether the record id is listed as a failure.
func (r BatchResult) Failed(id string) bool {
	for _, f := range r.BatchItemFailures {
		if f.ItemIdentifier == id {
			return true
		}
	}
	return false
}

// ReceiptService renders and emails receipts for a batch of queued purchases.
type ReceiptService interface {
	ProcessBatch(ctx context.Context, records []QueueRecord) BatchResult
}
