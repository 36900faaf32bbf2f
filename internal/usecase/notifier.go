package usecase

import (
	"context"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/notification"
)

// Notifier is the slice of NotificationFanout the services need. Live
// pushes are best-effort and never return; only message enqueueing
// reports failure.
type Notifier interface {
	NotifyRole(role string, event notification.Event)
	EnqueueMessage(ctx context.Context, kind string, booking *entity.Booking, recipient string) error
}
