package usecase

import (
	"context"
	"fmt"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/dto/request"
	"interview-booking/internal/dto/response"
	"interview-booking/internal/notification"
	"interview-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RescheduleService interface {
	// Reschedule moves a booking to a new slot, conflict-checked against
	// the same capacity rules as Reserve but excluding the booking being
	// moved. On conflict the original booking is left untouched.
	Reschedule(ctx context.Context, bookingID string, req *request.RescheduleRequest) (*response.BookingResponse, error)
}

type rescheduleService struct {
	repo         *repository.Repository
	availability AvailabilityService
	notifier     Notifier
	log          *zap.Logger
}

func NewRescheduleService(repo *repository.Repository, availability AvailabilityService, notifier Notifier, log *zap.Logger) RescheduleService {
	return &rescheduleService{
		repo:         repo,
		availability: availability,
		notifier:     notifier,
		log:          log.With(zap.String("service", "reschedule")),
	}
}

func (s *rescheduleService) Reschedule(ctx context.Context, bookingID string, req *request.RescheduleRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reschedule validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	existing, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, entity.ErrBookingNotFound)
	}

	// Old slot captured for audit and the rescheduled event.
	oldDate := existing.SlotDate
	oldTime := existing.SlotTime

	newDate, err := utils.ParseDate(req.NewDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date format %s: %w", req.NewDate, err)
	}

	capacity, err := s.availability.ValidateSlot(ctx, newDate, req.NewTime)
	if err != nil {
		return nil, err
	}

	var status *entity.BookingStatus
	if req.Status != "" {
		st := entity.BookingStatus(req.Status)
		status = &st
	}

	booking, err := s.repo.Booking.MoveAtomic(ctx, id, newDate, req.NewTime, status, capacity)
	if err != nil {
		// On conflict the original booking is untouched; the caller can
		// re-query availability and retry.
		s.log.Warn("Failed to move booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("new_date", req.NewDate),
			zap.String("new_time", req.NewTime),
		)
		return nil, err
	}

	s.log.Info("Booking rescheduled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("old_date", oldDate.Format("2006-01-02")),
		zap.String("old_time", oldTime),
		zap.String("new_date", req.NewDate),
		zap.String("new_time", req.NewTime),
		zap.Bool("notify", req.Notify),
	)

	// Detached fan-out after the move committed. Dispatch failures are
	// logged, never surfaced as a failure of the reschedule itself.
	notify := req.Notify
	go func() {
		event := notification.NewRescheduledEvent(booking, oldDate, oldTime)
		s.notifier.NotifyRole(notification.RoleAdmin, event)

		if !notify {
			return
		}
		msgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.notifier.EnqueueMessage(msgCtx, string(notification.EventRescheduled), booking, booking.ClientEmail)
	}()

	resp := response.BookingToResponse(booking)
	return &resp, nil
}
