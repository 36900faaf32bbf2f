package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/dto/request"
	"interview-booking/internal/notification"

	"github.com/google/uuid"
)

func newTestReschedule(capacity int) (RescheduleService, BookingService, *fakeBookingRepo, *fakeNotifier) {
	repo, bookings := testRepository(capacity)
	notifier := newFakeNotifier()
	availability := NewAvailabilityService(repo, testConfig(), testLogger())
	booking := NewBookingService(repo, availability, notifier, testLogger())
	reschedule := NewRescheduleService(repo, availability, notifier, testLogger())
	return reschedule, booking, bookings, notifier
}

func rescheduleRequest(date time.Time, slotTime string, notify bool) *request.RescheduleRequest {
	return &request.RescheduleRequest{
		NewDate: date.Format("2006-01-02"),
		NewTime: slotTime,
		Notify:  notify,
	}
}

func TestReschedule(t *testing.T) {
	svc, booking, bookings, notifier := newTestReschedule(1)
	date := futureDate()

	reserved, err := booking.Reserve(context.Background(), validReserveRequest(date, "09:00"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	notifier.waitForEvent(2 * time.Second)

	newDate := date.AddDate(0, 0, 1)
	resp, err := svc.Reschedule(context.Background(), reserved.ID, rescheduleRequest(newDate, "10:00", true))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if resp.Date != newDate.Format("2006-01-02") || resp.Time != "10:00" {
		t.Errorf("unexpected slot in response: %s %s", resp.Date, resp.Time)
	}

	stored, _ := bookings.FindByID(context.Background(), uuid.MustParse(reserved.ID))
	if stored.SlotTime != "10:00" || !stored.SlotDate.Equal(newDate) {
		t.Errorf("move not persisted: %+v", stored)
	}

	event, ok := notifier.waitForEvent(2 * time.Second)
	if !ok {
		t.Fatal("expected a rescheduled event")
	}
	if event.Type != notification.EventRescheduled {
		t.Errorf("expected rescheduled event, got %s", event.Type)
	}
	if event.OldDate != date.Format("2006-01-02") || event.OldTime != "09:00" {
		t.Errorf("event should carry the vacated slot, got %s %s", event.OldDate, event.OldTime)
	}

	eventually(t, func() bool {
		_, messages := notifier.snapshot()
		for _, m := range messages {
			if m == "rescheduled:"+stored.ClientEmail {
				return true
			}
		}
		return false
	}, "expected a reschedule message for the client")

	// The vacated slot is reservable again.
	if _, err := booking.Reserve(context.Background(), validReserveRequest(date, "09:00")); err != nil {
		t.Fatalf("reserve vacated slot: %v", err)
	}
}

func TestRescheduleConflictLeavesOriginal(t *testing.T) {
	svc, booking, bookings, notifier := newTestReschedule(1)
	date := futureDate()

	first, err := booking.Reserve(context.Background(), validReserveRequest(date, "09:00"))
	if err != nil {
		t.Fatalf("reserve first: %v", err)
	}
	if _, err := booking.Reserve(context.Background(), validReserveRequest(date, "09:30")); err != nil {
		t.Fatalf("reserve second: %v", err)
	}
	notifier.waitForEvent(2 * time.Second)
	notifier.waitForEvent(2 * time.Second)

	_, err = svc.Reschedule(context.Background(), first.ID, rescheduleRequest(date, "09:30", false))
	if !errors.Is(err, entity.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	stored, _ := bookings.FindByID(context.Background(), uuid.MustParse(first.ID))
	if stored.SlotTime != "09:00" || !stored.SlotDate.Equal(date) || !stored.IsActive() {
		t.Errorf("failed reschedule must leave the booking untouched: %+v", stored)
	}
}

func TestRescheduleSameSlot(t *testing.T) {
	svc, booking, _, notifier := newTestReschedule(1)
	date := futureDate()

	reserved, err := booking.Reserve(context.Background(), validReserveRequest(date, "11:00"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	notifier.waitForEvent(2 * time.Second)

	// Moving a booking onto its own slot must not count itself as the
	// conflicting occupant.
	if _, err := svc.Reschedule(context.Background(), reserved.ID, rescheduleRequest(date, "11:00", false)); err != nil {
		t.Fatalf("same-slot reschedule: %v", err)
	}
}

func TestRescheduleWithStatusTransition(t *testing.T) {
	svc, booking, bookings, notifier := newTestReschedule(1)
	date := futureDate()

	reserved, err := booking.Reserve(context.Background(), validReserveRequest(date, "09:00"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	notifier.waitForEvent(2 * time.Second)

	req := rescheduleRequest(date, "09:30", false)
	req.Status = string(entity.BookingStatusConfirmed)
	if _, err := svc.Reschedule(context.Background(), reserved.ID, req); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	stored, _ := bookings.FindByID(context.Background(), uuid.MustParse(reserved.ID))
	if stored.Status != entity.BookingStatusConfirmed {
		t.Errorf("expected confirmed status after move, got %s", stored.Status)
	}
}

func TestRescheduleNotFound(t *testing.T) {
	svc, _, _, _ := newTestReschedule(1)

	_, err := svc.Reschedule(context.Background(), uuid.NewString(), rescheduleRequest(futureDate(), "09:00", false))
	if !errors.Is(err, entity.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	_, err = svc.Reschedule(context.Background(), "garbage", rescheduleRequest(futureDate(), "09:00", false))
	if err == nil || !strings.Contains(err.Error(), "invalid booking ID") {
		t.Fatalf("expected invalid ID error, got %v", err)
	}
}

func TestRescheduleValidation(t *testing.T) {
	svc, _, _, _ := newTestReschedule(1)

	_, err := svc.Reschedule(context.Background(), uuid.NewString(), &request.RescheduleRequest{NewDate: "2026-09-10"})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error for missing time, got %v", err)
	}
}

func TestRescheduleToInvalidSlot(t *testing.T) {
	svc, booking, bookings, notifier := newTestReschedule(1)
	date := futureDate()

	reserved, err := booking.Reserve(context.Background(), validReserveRequest(date, "09:00"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	notifier.waitForEvent(2 * time.Second)

	if _, err := svc.Reschedule(context.Background(), reserved.ID, rescheduleRequest(date, "09:10", false)); !errors.Is(err, entity.ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}

	stored, _ := bookings.FindByID(context.Background(), uuid.MustParse(reserved.ID))
	if stored.SlotTime != "09:00" {
		t.Errorf("rejected reschedule must not move the booking: %+v", stored)
	}
}
