// Package notify delivers push notifications as a best-effort side channel.
// Mutations enqueue a payload after they commit; delivery happens on worker
// goroutines so a slow or failing gateway never rolls back or delays the
// primary operation.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/homeplate/homeplate-golang/internal/retry"
)

// Payload is one notification to a single recipient.
type Payload struct {
	RecipientID int64  `json:"recipientId"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Category    string `json:"category"`
}

// Store is what the dispatcher needs from persistence: the recipient's
// device token and a place to record the in-app copy of the notification.
type Store interface {
	DeviceToken(ctx context.Context, userID int64) (string, bool, error)
	SaveNotification(ctx context.Context, p Payload) error
}

// Sender pushes one payload to a device token.
type Sender interface {
	Send(ctx context.Context, token string, p Payload) error
}

// Dispatcher owns the queue and workers. Enqueue never blocks: when the
// queue is full the payload is dropped with a warning, because notification
// delivery is best-effort by contract.
type Dispatcher struct {
	queue  chan Payload
	store  Store
	sender Sender
	log    *zap.Logger
	wg     sync.WaitGroup

	attempts    int
	retryBase   time.Duration
	sendTimeout time.Duration
}

func NewDispatcher(store Store, sender Sender, log *zap.Logger, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		queue:       make(chan Payload, queueSize),
		store:       store,
		sender:      sender,
		log:         log,
		attempts:    3,
		retryBase:   500 * time.Millisecond,
		sendTimeout: 10 * time.Second,
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue hands a payload to the workers. Returns false when the payload
// was dropped because the queue is full.
func (d *Dispatcher) Enqueue(p Payload) bool {
	select {
	case d.queue <- p:
		return true
	default:
		d.log.Warn("notification queue full, dropping payload",
			zap.Int64("recipientId", p.RecipientID),
			zap.String("category", p.Category))
		return false
	}
}

// Close stops accepting payloads and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for p := range d.queue {
		d.deliver(p)
	}
}

func (d *Dispatcher) deliver(p Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	// In-app copy first; users without a device token still see it there.
	if err := d.store.SaveNotification(ctx, p); err != nil {
		d.log.Warn("failed to record in-app notification",
			zap.Int64("recipientId", p.RecipientID), zap.Error(err))
	}

	token, ok, err := d.store.DeviceToken(ctx, p.RecipientID)
	if err != nil {
		d.log.Warn("device token lookup failed",
			zap.Int64("recipientId", p.RecipientID), zap.Error(err))
		return
	}
	if !ok {
		// Recipient never registered a device. Not an error.
		return
	}

	err = retry.Do(ctx, d.attempts, d.retryBase, retryableSendError, func() error {
		return d.sender.Send(ctx, token, p)
	})
	if err != nil {
		d.log.Warn("push delivery failed",
			zap.Int64("recipientId", p.RecipientID),
			zap.String("category", p.Category),
			zap.Error(err))
	}
}

// retryableSendError treats gateway 5xx responses and transient network
// failures as retryable; client errors (bad token, malformed payload) are
// permanent.
func retryableSendError(err error) bool {
	var gw *GatewayError
	if errors.As(err, &gw) {
		return gw.StatusCode >= 500 && gw.StatusCode < 600
	}
	return retry.Transient(err)
}
