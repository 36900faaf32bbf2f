package notification

import (
	"context"
	"encoding/json"
	"time"

	"interview-booking/internal/dto/response"
	"interview-booking/pkg/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Sender is the message-dispatch collaborator. Templating and formatting
// of the outgoing message are entirely its responsibility.
type Sender interface {
	Send(ctx context.Context, recipient, kind string, booking response.BookingResponse) error
}

// ConsoleSender logs deliveries instead of sending them. Default until a
// real mail/SMS collaborator is injected.
type ConsoleSender struct {
	log *zap.Logger
}

func NewConsoleSender(log *zap.Logger) *ConsoleSender {
	return &ConsoleSender{log: log.With(zap.String("sender", "console"))}
}

func (s *ConsoleSender) Send(ctx context.Context, recipient, kind string, booking response.BookingResponse) error {
	s.log.Info("Message delivered",
		zap.String("recipient", recipient),
		zap.String("kind", kind),
		zap.String("booking_id", booking.ID),
		zap.String("date", booking.Date),
		zap.String("time", booking.Time),
	)
	return nil
}

// StartWorker runs the asynq delivery worker in the background and
// returns the server so the caller can shut it down.
func StartWorker(config utils.RedisConfig, sender Sender, log *zap.Logger) *asynq.Server {
	workerLog := log.With(zap.String("worker", "delivery"))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.QueueDB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMessageDeliver, handleDeliverTask(sender, workerLog))

	go func() {
		const maxAttempts = 5

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			workerLog.Info("Starting delivery worker", zap.Int("attempt", attempt))
			err := srv.Run(mux)
			if err == nil {
				return
			}

			workerLog.Error("Delivery worker stopped",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt == maxAttempts {
				workerLog.Fatal("Delivery worker could not start, giving up")
			}
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
	}()

	return srv
}

func handleDeliverTask(sender Sender, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload MessagePayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error("Invalid delivery payload", zap.Error(err))
			return err
		}

		if err := sender.Send(ctx, payload.Recipient, payload.Kind, payload.Booking); err != nil {
			// asynq retries the task; delivery stays at-least-once.
			log.Warn("Delivery failed",
				zap.Error(err),
				zap.String("kind", payload.Kind),
				zap.String("booking_id", payload.Booking.ID),
			)
			return err
		}

		return nil
	}
}
