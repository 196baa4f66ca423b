// Package audit delivers mutation events to an external webhook.
//
// Delivery is fire-and-forget: events are queued on a bounded buffer and
// POSTed by a single worker. A full buffer, a failed POST, or a missing
// webhook URL never affects the caller.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType names a mutation.
type EventType string

// Audited mutations.
const (
	EventLogCreated EventType = "log.created"
	EventLogUpdated EventType = "log.updated"
	EventLogDeleted EventType = "log.deleted"
	EventTagCreated EventType = "tag.created"
	EventTagDeleted EventType = "tag.deleted"
)

// Event is the webhook payload.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	EntityID   string    `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Defaults for Config zero values.
const (
	DefaultQueueSize = 256
	DefaultTimeout   = 5 * time.Second
)

// Config configures a Notifier.
type Config struct {
	WebhookURL string
	QueueSize  int
	Timeout    time.Duration
}

// Notifier queues events and delivers them from one worker goroutine.
type Notifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time

	events chan Event
	wg     sync.WaitGroup

	// ctx bounds in-flight deliveries; cancelled when a drain deadline passes.
	ctx    context.Context
	cancel context.CancelFunc

	// shutdownMu guards closing events against concurrent Publish.
	shutdownMu sync.RWMutex
	shutdown   bool
}

// New creates a Notifier and starts its worker.
// With an empty WebhookURL the notifier is disabled and Publish is a no-op.
func New(cfg Config, logger *slog.Logger) *Notifier {
	n := &Notifier{
		url:    cfg.WebhookURL,
		logger: logger,
		now:    time.Now,
	}
	if n.url == "" {
		return n
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	n.client = &http.Client{Timeout: cfg.Timeout}
	n.events = make(chan Event, cfg.QueueSize)
	n.ctx, n.cancel = context.WithCancel(context.Background())

	n.wg.Add(1)
	go n.run()

	return n
}

// Enabled reports whether events are delivered anywhere.
func (n *Notifier) Enabled() bool {
	return n.events != nil
}

// Publish queues an event without blocking.
func (n *Notifier) Publish(eventType EventType, entityID string) {
	if !n.Enabled() {
		return
	}

	evt := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: n.now().UTC(),
	}

	n.shutdownMu.RLock()
	defer n.shutdownMu.RUnlock()

	if n.shutdown {
		return
	}

	select {
	case n.events <- evt:
	default:
		n.logger.Warn("audit queue full, dropping event",
			slog.String("event_type", string(eventType)),
			slog.String("entity_id", entityID),
		)
	}
}

// Shutdown stops accepting events and waits for queued ones to be delivered
// or for ctx to expire.
func (n *Notifier) Shutdown(ctx context.Context) error {
	if !n.Enabled() {
		return nil
	}

	n.shutdownMu.Lock()
	if !n.shutdown {
		n.shutdown = true
		close(n.events)
	}
	n.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.cancel()
		return nil
	case <-ctx.Done():
		n.logger.Warn("audit drain timed out, pending events lost", slog.Int("pending", len(n.events)))
		n.cancel()
		return ctx.Err()
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for evt := range n.events {
		if n.ctx.Err() != nil {
			continue
		}
		if err := n.deliver(n.ctx, evt); err != nil {
			n.logger.Warn("audit delivery failed",
				slog.String("event_type", string(evt.Type)),
				slog.String("entity_id", evt.EntityID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %s", resp.Status)
	}
	return nil
}
