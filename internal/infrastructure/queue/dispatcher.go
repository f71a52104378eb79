package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/api/metrics"
	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrQueueFull is returned by Notify when the worker buffer for the event is full.
var ErrQueueFull = errors.New("notification queue full")

// ErrDispatcherClosed is returned by Notify after Close.
var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// Dispatcher hands purchase notifications to a fixed set of workers using
// consistent hashing on the event id, so notifications for one event are
// published in commit order.
type Dispatcher struct {
	workers   []chan domain.PurchaseNotification
	publisher ports.NotificationPublisher
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.NotificationPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.PurchaseNotification, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.PurchaseNotification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx is passed to the publisher.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Notify enqueues n without blocking. It implements ports.Notifier.
func (d *Dispatcher) Notify(_ context.Context, n domain.PurchaseNotification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	idx := d.shardIndex(n.EventID)
	select {
	case d.workers[idx] <- n:
		metrics.DispatchQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits until the workers have
// published everything already queued, or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an event id deterministically to a worker index.
func (d *Dispatcher) shardIndex(eventID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(eventID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.PurchaseNotification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for n := range ch {
		metrics.DispatchQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		if err := d.publisher.Publish(ctx, n); err != nil {
			metrics.NotificationsTotal.WithLabelValues("error").Inc()
			d.log.Error().Err(err).
				Str("registration_id", n.RegistrationID).
				Str("event_id", n.EventID).
				Int("worker_id", id).
				Msg("notification publish failed")
		}
	}
}
