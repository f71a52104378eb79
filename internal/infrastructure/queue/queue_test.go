package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	mu    sync.Mutex
	got   []domain.PurchaseNotification
	err   error
	block chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, n domain.PurchaseNotification) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, n)
	return p.err
}

func (p *recordingPublisher) all() []domain.PurchaseNotification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.PurchaseNotification(nil), p.got...)
}

// batchHandler fails every record whose body is in failBodies.
type batchHandler struct {
	mu         sync.Mutex
	seen       []ports.QueueRecord
	failBodies map[string]bool
}

func (h *batchHandler) ProcessBatch(_ context.Context, records []ports.QueueRecord) ports.BatchResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := ports.BatchResult{BatchItemFailures: []ports.BatchItemFailure{}}
	for _, r := range records {
		h.seen = append(h.seen, r)
		if h.failBodies[r.Body] {
			res.BatchItemFailures = append(res.BatchItemFailures, ports.BatchItemFailure{ItemIdentifier: r.ID})
		}
	}
	return res
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func note(eventID, regID string) domain.PurchaseNotification {
	return domain.PurchaseNotification{
		EventName: "Feria", EventID: eventID, RegistrationID: regID,
		Name: "Ana", Email: "ana@example.com",
	}
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

func TestDispatcher_PublishesInOrderPerEvent(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(4, pub, zerolog.Nop())
	d.Start(context.Background())

	for _, id := range []string{"R1", "R2", "R3", "R4"} {
		if err := d.Notify(context.Background(), note("E1", id)); err != nil {
			t.Fatalf("notify %s: %v", id, err)
		}
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := pub.all()
	if len(got) != 4 {
		t.Fatalf("published %d, want 4", len(got))
	}
	for i, want := range []string{"R1", "R2", "R3", "R4"} {
		if got[i].RegistrationID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].RegistrationID, want)
		}
	}
}

func TestDispatcher_FullBufferReturnsErrQueueFull(t *testing.T) {
	pub := &recordingPublisher{block: make(chan struct{})}
	d := NewDispatcher(1, pub, zerolog.Nop())
	d.Start(context.Background())

	var full error
	for i := 0; i < channelBuffer+2; i++ {
		if err := d.Notify(context.Background(), note("E1", "R")); err != nil {
			full = err
			break
		}
	}
	if !errors.Is(full, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", full)
	}

	close(pub.block)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := d.Notify(context.Background(), note("E1", "late")); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("notify after close = %v", err)
	}
}

func TestDispatcher_PublishErrorsDoNotStopWorkers(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	d := NewDispatcher(2, pub, zerolog.Nop())
	d.Start(context.Background())
	_ = d.Notify(context.Background(), note("E1", "R1"))
	_ = d.Notify(context.Background(), note("E1", "R2"))
	if err := d.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(pub.all()) != 2 {
		t.Errorf("attempted %d publishes, want 2", len(pub.all()))
	}
}

// ---------------------------------------------------------------------------
// Stream publisher
// ---------------------------------------------------------------------------

func TestStreamPublisher_WritesBody(t *testing.T) {
	client := newRedis(t)
	p := NewStreamPublisher(client, "receipts", zerolog.Nop())

	if err := p.Publish(context.Background(), note("E1", "R1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	entries, err := client.XRange(context.Background(), "receipts", "-", "+").Result()
	if err != nil || len(entries) != 1 {
		t.Fatalf("xrange = %v, %v", entries, err)
	}
	var got domain.PurchaseNotification
	if err := json.Unmarshal([]byte(entries[0].Values["body"].(string)), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.RegistrationID != "R1" || got.Email != "ana@example.com" {
		t.Errorf("unexpected body %+v", got)
	}
	if _, ok := entries[0].Values["dedup_id"]; ok {
		t.Error("dedup_id set on a standard stream")
	}
}

func TestStreamPublisher_FIFOAddsDedupAndGroup(t *testing.T) {
	client := newRedis(t)
	p := NewStreamPublisher(client, "receipts.fifo", zerolog.Nop())
	p.newID = func() string { return "dedup-1" }

	if err := p.Publish(context.Background(), note("E1", "R1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	entries, _ := client.XRange(context.Background(), "receipts.fifo", "-", "+").Result()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Values["dedup_id"] != "dedup-1" || entries[0].Values["group"] != "registrations" {
		t.Errorf("unexpected values %v", entries[0].Values)
	}
}

func TestStreamPublisher_NoStreamIsNoop(t *testing.T) {
	client := newRedis(t)
	p := NewStreamPublisher(client, "", zerolog.Nop())
	if err := p.Publish(context.Background(), note("E1", "R1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if n, _ := client.DBSize(context.Background()).Result(); n != 0 {
		t.Errorf("keys written = %d", n)
	}
}

// ---------------------------------------------------------------------------
// Stream consumer
// ---------------------------------------------------------------------------

func TestStreamConsumer_AcksSuccessfulRecords(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()
	pub := NewStreamPublisher(client, "receipts", zerolog.Nop())
	h := &batchHandler{}
	c := NewStreamConsumer(client, ConsumerConfig{Stream: "receipts", Group: "g", Consumer: "c1", BatchSize: 10}, h, zerolog.Nop())

	if err := c.EnsureGroup(ctx); err != nil {
		t.Fatalf("ensure group: %v", err)
	}
	if err := c.EnsureGroup(ctx); err != nil {
		t.Fatalf("ensure group twice: %v", err)
	}
	for _, id := range []string{"R1", "R2"} {
		if err := pub.Publish(ctx, note("E1", id)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Poll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("poll = %d, %v", n, err)
	}
	pending, err := client.XPending(ctx, "receipts", "g").Result()
	if err != nil {
		t.Fatal(err)
	}
	if pending.Count != 0 {
		t.Errorf("pending = %d, want 0", pending.Count)
	}
	if n, _ := c.Poll(ctx); n != 0 {
		t.Errorf("second poll handled %d records", n)
	}
}

func TestStreamConsumer_FailuresAreRedeliveredThenDeadLettered(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()
	h := &batchHandler{failBodies: map[string]bool{"not json": true}}
	c := NewStreamConsumer(client, ConsumerConfig{
		Stream: "receipts", Group: "g", Consumer: "c1", BatchSize: 10, MaxDeliveries: 2,
	}, h, zerolog.Nop())

	if err := c.EnsureGroup(ctx); err != nil {
		t.Fatal(err)
	}
	if err := client.XAdd(ctx, &redis.XAddArgs{Stream: "receipts", Values: map[string]any{"body": "not json"}}).Err(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if _, err := c.Poll(ctx); err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
		time.Sleep(time.Millisecond)
	}

	dlq, err := client.XRange(ctx, c.DeadLetterStream(), "-", "+").Result()
	if err != nil {
		t.Fatal(err)
	}
	if len(dlq) != 1 || dlq[0].Values["body"] != "not json" {
		t.Fatalf("dead-letter entries = %v", dlq)
	}
	pending, _ := client.XPending(ctx, "receipts", "g").Result()
	if pending.Count != 0 {
		t.Errorf("pending = %d after dead-lettering", pending.Count)
	}
	if len(h.seen) < 2 {
		t.Errorf("record delivered %d times, want at least 2", len(h.seen))
	}
}

func TestToRecord(t *testing.T) {
	rec := toRecord(redis.XMessage{ID: "1-0", Values: map[string]any{"body": "{}", "dedup_id": "d"}})
	if rec.ID != "1-0" || rec.Body != "{}" || rec.DedupID != "d" {
		t.Errorf("record = %+v", rec)
	}
	if empty := toRecord(redis.XMessage{ID: "2-0"}); empty.Body != "" {
		t.Errorf("record = %+v", empty)
	}
}
