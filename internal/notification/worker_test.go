package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"interview-booking/internal/dto/response"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type recordingSender struct {
	recipients []string
	kinds      []string
	err        error
}

func (s *recordingSender) Send(ctx context.Context, recipient, kind string, booking response.BookingResponse) error {
	if s.err != nil {
		return s.err
	}
	s.recipients = append(s.recipients, recipient)
	s.kinds = append(s.kinds, kind)
	return nil
}

func deliverTask(t *testing.T, payload MessagePayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(TypeMessageDeliver, b)
}

func TestHandleDeliverTask(t *testing.T) {
	sender := &recordingSender{}
	handle := handleDeliverTask(sender, zap.NewNop())

	booking := response.BookingToResponse(sampleBooking())
	task := deliverTask(t, MessagePayload{Kind: "24h-before", Recipient: "ihzha@example.com", Booking: booking})

	if err := handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.recipients) != 1 || sender.recipients[0] != "ihzha@example.com" || sender.kinds[0] != "24h-before" {
		t.Errorf("unexpected delivery: %v %v", sender.recipients, sender.kinds)
	}
}

func TestHandleDeliverTaskSenderFailure(t *testing.T) {
	sendErr := errors.New("smtp refused")
	handle := handleDeliverTask(&recordingSender{err: sendErr}, zap.NewNop())

	task := deliverTask(t, MessagePayload{Kind: "created", Recipient: "ihzha@example.com"})

	// The error must propagate so the queue retries the task.
	if err := handle(context.Background(), task); !errors.Is(err, sendErr) {
		t.Fatalf("expected sender error to propagate, got %v", err)
	}
}

func TestHandleDeliverTaskBadPayload(t *testing.T) {
	handle := handleDeliverTask(&recordingSender{}, zap.NewNop())

	task := asynq.NewTask(TypeMessageDeliver, []byte("{not json"))
	if err := handle(context.Background(), task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
