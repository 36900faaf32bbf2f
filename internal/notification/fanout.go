package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/dto/response"

	"go.uber.org/zap"
)

// LivePublisher is the live-session transport collaborator: a pub/sub
// channel keyed by role or user id.
type LivePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// MessageQueue hands a message off for asynchronous delivery.
type MessageQueue interface {
	Enqueue(ctx context.Context, payload MessagePayload) error
}

// MessagePayload is what the delivery worker eventually hands to the
// message-dispatch collaborator. Kind is a lifecycle event type or a
// reminder checkpoint name.
type MessagePayload struct {
	Kind      string                   `json:"kind"`
	Recipient string                   `json:"recipient"`
	Booking   response.BookingResponse `json:"booking"`
}

// Fanout distributes lifecycle events to live sessions and enqueues
// asynchronous message dispatch. Live pushes are best-effort and never
// surface an error to callers; only EnqueueMessage reports failure, since
// the reminder sweep needs it to decide whether to set a flag.
type Fanout struct {
	live  LivePublisher
	queue MessageQueue
	log   *zap.Logger
}

func NewFanout(live LivePublisher, queue MessageQueue, log *zap.Logger) *Fanout {
	return &Fanout{
		live:  live,
		queue: queue,
		log:   log.With(zap.String("service", "fanout")),
	}
}

func (f *Fanout) publish(channel string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		f.log.Error("Failed to encode event",
			zap.Error(err),
			zap.String("channel", channel),
			zap.String("event", string(event.Type)),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := f.live.Publish(ctx, channel, payload); err != nil {
		// Live sessions are best-effort; drop with a log entry.
		f.log.Warn("Failed to push live event",
			zap.Error(err),
			zap.String("channel", channel),
			zap.String("event", string(event.Type)),
		)
		return
	}

	f.log.Debug("Live event pushed",
		zap.String("channel", channel),
		zap.String("event", string(event.Type)),
	)
}

// NotifyRole pushes an event to every live session holding the role.
func (f *Fanout) NotifyRole(role string, event Event) {
	f.publish("live:role:"+role, event)
}

// NotifyUser pushes an event to one user's live sessions.
func (f *Fanout) NotifyUser(userID string, event Event) {
	f.publish("live:user:"+userID, event)
}

// NotifyAll pushes an event to every live session.
func (f *Fanout) NotifyAll(event Event) {
	f.publish("live:all", event)
}

// EnqueueMessage hands a message to the delivery queue. The error is
// returned to the caller but must never unwind a booking transaction
// that already committed.
func (f *Fanout) EnqueueMessage(ctx context.Context, kind string, booking *entity.Booking, recipient string) error {
	payload := MessagePayload{
		Kind:      kind,
		Recipient: recipient,
		Booking:   response.BookingToResponse(booking),
	}

	if err := f.queue.Enqueue(ctx, payload); err != nil {
		f.log.Error("Failed to enqueue message",
			zap.Error(err),
			zap.String("kind", kind),
			zap.String("booking_id", payload.Booking.ID),
		)
		return fmt.Errorf("enqueue %s message for booking %s: %w", kind, payload.Booking.ID, err)
	}

	f.log.Info("Message enqueued",
		zap.String("kind", kind),
		zap.String("booking_id", payload.Booking.ID),
		zap.String("recipient", recipient),
	)
	return nil
}
