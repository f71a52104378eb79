package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/api/metrics"
	"github.com/99minutos/ticketing-system/internal/core/domain"
)

const (
	// fifoSuffix marks streams whose consumers deduplicate by dedup_id.
	fifoSuffix   = ".fifo"
	messageGroup = "registrations"

	fieldBody    = "body"
	fieldDedupID = "dedup_id"
	fieldGroup   = "group"
)

// StreamPublisher writes notifications to a Redis stream.
type StreamPublisher struct {
	client redis.UniversalClient
	stream string
	log    zerolog.Logger
	newID  func() string
}

// NewStreamPublisher returns a publisher for stream. An empty stream name
// turns Publish into a logged no-op.
func NewStreamPublisher(client redis.UniversalClient, stream string, log zerolog.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, log: log, newID: uuid.NewString}
}

// Publish appends n as JSON under the body field.
func (p *StreamPublisher) Publish(ctx context.Context, n domain.PurchaseNotification) error {
	if p.stream == "" {
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		p.log.Warn().Str("registration_id", n.RegistrationID).Msg("notification stream not configured, skipping")
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	values := map[string]any{fieldBody: string(body)}
	if strings.HasSuffix(p.stream, fifoSuffix) {
		values[fieldDedupID] = p.newID()
		values[fieldGroup] = messageGroup
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{Stream: p.stream, Values: values}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	metrics.NotificationsTotal.WithLabelValues("published").Inc()
	p.log.Debug().Str("stream", p.stream).Str("message_id", id).Str("registration_id", n.RegistrationID).Msg("notification published")
	return nil
}
