package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/api/metrics"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

const (
	dlqSuffix      = ":dlq"
	pollBackoff    = time.Second
	defaultBatch   = 10
	defaultMinIdle = 30 * time.Second
)

// ConsumerConfig configures a StreamConsumer.
type ConsumerConfig struct {
	Stream   string
	Group    string
	Consumer string
	// BatchSize bounds the entries read per poll.
	BatchSize int64
	// Block is how long a poll waits for new entries. Zero polls without waiting.
	Block time.Duration
	// MinIdle is how long a delivered but unacknowledged entry waits before it is reclaimed.
	MinIdle time.Duration
	// MaxDeliveries moves an entry to the dead-letter stream once it has been
	// delivered more times than this.
	MaxDeliveries int64
}

// StreamConsumer reads notification batches from a Redis stream consumer group,
// hands them to the receipt service and acknowledges every entry not reported
// as a failure. Failures stay pending and are redelivered after MinIdle.
type StreamConsumer struct {
	client  redis.UniversalClient
	cfg     ConsumerConfig
	handler ports.ReceiptService
	log     zerolog.Logger
}

func NewStreamConsumer(client redis.UniversalClient, cfg ConsumerConfig, handler ports.ReceiptService, log zerolog.Logger) *StreamConsumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatch
	}
	if cfg.MinIdle < 0 {
		cfg.MinIdle = defaultMinIdle
	}
	return &StreamConsumer{client: client, cfg: cfg, handler: handler, log: log}
}

// DeadLetterStream returns the name of the stream exhausted entries are moved to.
func (c *StreamConsumer) DeadLetterStream() string {
	return c.cfg.Stream + dlqSuffix
}

// EnsureGroup creates the consumer group (and the stream) if missing.
func (c *StreamConsumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Run polls until ctx is cancelled.
func (c *StreamConsumer) Run(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}
	c.log.Info().Str("stream", c.cfg.Stream).Str("group", c.cfg.Group).Str("consumer", c.cfg.Consumer).Msg("receipt consumer started")

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error().Err(err).Msg("receipt poll failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollBackoff):
			}
		}
	}
}

// Poll runs one reclaim, read, process and acknowledge cycle and returns how
// many entries were handed to the receipt service.
func (c *StreamConsumer) Poll(ctx context.Context) (int, error) {
	start := time.Now()

	reclaimed, err := c.reclaim(ctx)
	if err != nil {
		return 0, err
	}

	block := c.cfg.Block
	if block <= 0 || len(reclaimed) > 0 {
		block = -1
	}
	fresh, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    c.cfg.BatchSize,
		Block:    block,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("xreadgroup: %w", err)
	}

	messages := reclaimed
	for _, s := range fresh {
		messages = append(messages, s.Messages...)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	records := make([]ports.QueueRecord, 0, len(messages))
	for _, m := range messages {
		records = append(records, toRecord(m))
	}
	result := c.handler.ProcessBatch(ctx, records)

	var ack []string
	for _, r := range records {
		if !result.Failed(r.ID) {
			ack = append(ack, r.ID)
		}
	}
	if len(ack) > 0 {
		if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, ack...).Err(); err != nil {
			return len(records), fmt.Errorf("xack: %w", err)
		}
	}

	metrics.ReceiptBatchDuration.Observe(time.Since(start).Seconds())
	return len(records), nil
}

// reclaim takes over idle pending entries and dead-letters those delivered too often.
func (c *StreamConsumer) reclaim(ctx context.Context) ([]redis.XMessage, error) {
	msgs, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.cfg.Stream,
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		MinIdle:  c.cfg.MinIdle,
		Start:    "0-0",
		Count:    c.cfg.BatchSize,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if len(msgs) == 0 || c.cfg.MaxDeliveries <= 0 {
		return msgs, nil
	}

	kept := msgs[:0]
	for _, m := range msgs {
		n, err := c.deliveryCount(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if n <= c.cfg.MaxDeliveries {
			kept = append(kept, m)
			continue
		}
		if err := c.deadLetter(ctx, m, n); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

func (c *StreamConsumer) deliveryCount(ctx context.Context, id string) (int64, error) {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.cfg.Stream,
		Group:  c.cfg.Group,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("xpending %s: %w", id, err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	return pending[0].RetryCount, nil
}

func (c *StreamConsumer) deadLetter(ctx context.Context, m redis.XMessage, deliveries int64) error {
	values := map[string]any{
		"original_id": m.ID,
		"deliveries":  deliveries,
		"moved_at":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range m.Values {
		values[k] = v
	}
	if err := c.client.XAdd(ctx, &redis.XAddArgs{Stream: c.DeadLetterStream(), Values: values}).Err(); err != nil {
		return fmt.Errorf("dead-letter %s: %w", m.ID, err)
	}
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, m.ID).Err(); err != nil {
		return fmt.Errorf("ack dead-lettered %s: %w", m.ID, err)
	}

	metrics.ReceiptsTotal.WithLabelValues("dead_lettered").Inc()
	c.log.Warn().Str("message_id", m.ID).Int64("deliveries", deliveries).Str("dlq", c.DeadLetterStream()).Msg("receipt moved to dead-letter stream")
	return nil
}

func toRecord(m redis.XMessage) ports.QueueRecord {
	rec := ports.QueueRecord{ID: m.ID}
	if body, ok := m.Values[fieldBody].(string); ok {
		rec.Body = body
	}
	if dedup, ok := m.Values[fieldDedupID].(string); ok {
		rec.DedupID = dedup
	}
	return rec
}
