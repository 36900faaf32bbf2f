package scheduler

import (
	"context"
	"fmt"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Dispatcher hands reminder messages off for delivery. Enqueue failure
// must be reported: the sweep only marks a flag after a confirmed
// hand-off.
type Dispatcher interface {
	EnqueueMessage(ctx context.Context, kind string, booking *entity.Booking, recipient string) error
}

// BookingStore is the slice of the booking repository the sweeps read
// and claim flags through.
type BookingStore interface {
	DueForCheckpoint(ctx context.Context, checkpoint entity.ReminderCheckpoint, now time.Time) ([]*entity.Booking, error)
	MarkReminderSent(ctx context.Context, bookingID uuid.UUID, checkpoint entity.ReminderCheckpoint) (bool, error)
}

// Sweeper runs periodic passes over bookings that crossed a reminder
// checkpoint. Sweeps may overlap; idempotency comes from the conditional
// flag update in the store, not from mutual exclusion.
type Sweeper struct {
	bookings BookingStore
	dispatch Dispatcher
	now      func() time.Time
	log      *zap.Logger
}

func NewSweeper(bookings BookingStore, dispatch Dispatcher, log *zap.Logger) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		dispatch: dispatch,
		now:      time.Now,
		log:      log.With(zap.String("service", "sweeper")),
	}
}

// Sweep processes one checkpoint pass and returns how many reminders
// were dispatched. Individual dispatch failures never abort the pass;
// the booking stays due and is retried on the next sweep. Delivery is
// at-least-once: overlapping sweeps can both dispatch before one claims
// the flag, so a reminder may repeat but is never silently lost.
func (s *Sweeper) Sweep(ctx context.Context, checkpoint entity.ReminderCheckpoint) (int, error) {
	due, err := s.bookings.DueForCheckpoint(ctx, checkpoint, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep %s: %w", checkpoint, err)
	}

	sent := 0
	for _, booking := range due {
		if err := s.dispatch.EnqueueMessage(ctx, string(checkpoint), booking, booking.ClientEmail); err != nil {
			// Flag stays unset; unbounded retry on following sweeps is
			// intentional, staleness is an operational signal.
			s.log.Warn("Reminder dispatch failed, will retry next sweep",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.String("checkpoint", string(checkpoint)),
			)
			continue
		}

		claimed, err := s.bookings.MarkReminderSent(ctx, booking.ID, checkpoint)
		if err != nil {
			s.log.Error("Failed to mark reminder sent",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.String("checkpoint", string(checkpoint)),
			)
			continue
		}
		if !claimed {
			// An overlapping sweep got here first.
			s.log.Debug("Reminder already claimed",
				zap.String("booking_id", booking.ID.String()),
				zap.String("checkpoint", string(checkpoint)),
			)
			continue
		}

		sent++
	}

	if len(due) > 0 {
		s.log.Info("Sweep finished",
			zap.String("checkpoint", string(checkpoint)),
			zap.Int("due", len(due)),
			zap.Int("sent", sent),
		)
	}

	return sent, nil
}

// Start registers one cron entry per checkpoint and starts the scheduler
// in its own goroutines. The returned cron is stopped by the caller on
// shutdown.
func Start(config utils.SchedulerConfig, sweeper *Sweeper, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	entries := []struct {
		spec       string
		checkpoint entity.ReminderCheckpoint
	}{
		{config.Spec24h, entity.Checkpoint24hBefore},
		{config.Spec1h, entity.Checkpoint1hBefore},
		{config.SpecFollowup, entity.CheckpointFollowup},
	}

	for _, entry := range entries {
		checkpoint := entry.checkpoint
		_, err := c.AddFunc(entry.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			if _, err := sweeper.Sweep(ctx, checkpoint); err != nil {
				log.Error("Sweep failed",
					zap.Error(err),
					zap.String("checkpoint", string(checkpoint)),
				)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("register sweep %s (%q): %w", checkpoint, entry.spec, err)
		}
	}

	c.Start()
	log.Info("Reminder scheduler started",
		zap.String("spec_24h", config.Spec24h),
		zap.String("spec_1h", config.Spec1h),
		zap.String("spec_followup", config.SpecFollowup),
	)

	return c, nil
}
