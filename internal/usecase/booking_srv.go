package usecase

import (
	"context"
	"errors"
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

type BookingService interface {
	// Reserve performs the atomic check-and-reserve. Under concurrent
	// invocation for the same slot, losers get entity.ErrSlotTaken.
	Reserve(ctx context.Context, req *request.ReserveRequest) (*response.BookingResponse, error)

	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, status, date string, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// CancelBooking transitions to cancelled, immediately freeing the slot.
	CancelBooking(ctx context.Context, bookingID string) error
	// CompleteBooking transitions to completed, arming the follow-up.
	CompleteBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo         *repository.Repository
	availability AvailabilityService
	notifier     Notifier
	log          *zap.Logger
}

func NewBookingService(repo *repository.Repository, availability AvailabilityService, notifier Notifier, log *zap.Logger) BookingService {
	return &bookingService{
		repo:         repo,
		availability: availability,
		notifier:     notifier,
		log:          log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) Reserve(ctx context.Context, req *request.ReserveRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reserve validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date format %s: %w", req.Date, err)
	}

	// Date bookable, time is a configured candidate slot. Capacity is
	// re-checked again inside the reserve transaction; this read only
	// rejects requests that can never succeed.
	capacity, err := s.availability.ValidateSlot(ctx, date, req.Time)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		SlotDate:    date,
		SlotTime:    req.Time,
		Modality:    entity.BookingModality(req.Modality),
		Status:      entity.BookingStatusPending,
		Notes:       req.Notes,
	}

	if err := s.repo.Booking.ReserveAtomic(ctx, booking, capacity); err != nil {
		if errors.Is(err, entity.ErrSlotTaken) {
			s.log.Info("Reserve lost slot race",
				zap.String("date", req.Date),
				zap.String("time", req.Time),
			)
			return nil, err
		}
		s.log.Error("Failed to reserve booking",
			zap.Error(err),
			zap.String("date", req.Date),
			zap.String("time", req.Time),
		)
		return nil, fmt.Errorf("reserve booking: %w", err)
	}

	s.log.Info("Booking reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("client_email", booking.ClientEmail),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
		zap.String("modality", req.Modality),
	)

	// Detached fan-out: the reservation is already committed, nothing
	// past this point may affect the caller's outcome.
	go s.fanout(notification.NewEvent(notification.EventCreated, booking), booking, true)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, entity.ErrBookingNotFound)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListBookings(ctx context.Context, status, date string, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	filter := repository.BookingListFilter{Status: entity.BookingStatus(status)}
	if date != "" {
		parsed, err := utils.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("invalid date format %s: %w", date, err)
		}
		filter.Date = &parsed
	}

	bookings, err := s.repo.Booking.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	items := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		items[i] = response.BookingToResponse(booking)
	}

	return response.NewPaginatedResponse(items, page.Page, page.PerPage, total), nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) error {
	booking, err := s.transitionStatus(ctx, bookingID, entity.BookingStatusCancelled)
	if err != nil {
		return err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("date", booking.SlotDate.Format("2006-01-02")),
		zap.String("time", booking.SlotTime),
	)

	go s.fanout(notification.NewEvent(notification.EventCancelled, booking), booking, true)
	return nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, bookingID string) error {
	booking, err := s.transitionStatus(ctx, bookingID, entity.BookingStatusCompleted)
	if err != nil {
		return err
	}

	s.log.Info("Booking completed", zap.String("booking_id", booking.ID.String()))

	go s.fanout(notification.NewEvent(notification.EventUpdated, booking), booking, false)
	return nil
}

// transitionStatus applies a status-only transition on an active booking.
func (s *bookingService) transitionStatus(ctx context.Context, bookingID string, status entity.BookingStatus) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, entity.ErrBookingNotFound)
	}

	if !booking.IsActive() {
		return nil, fmt.Errorf("cannot transition booking %s from status %s", bookingID, booking.Status)
	}

	if err := s.repo.Booking.UpdateStatus(ctx, id, status); err != nil {
		s.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	booking.Status = status
	booking.UpdatedAt = time.Now()
	return booking, nil
}

// fanout publishes the lifecycle event to admin live sessions and, when
// withMessage is set, enqueues a client message. Always runs detached
// from the request; failures are logged and dropped.
func (s *bookingService) fanout(event notification.Event, booking *entity.Booking, withMessage bool) {
	s.notifier.NotifyRole(notification.RoleAdmin, event)

	if !withMessage {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.notifier.EnqueueMessage(ctx, string(event.Type), booking, booking.ClientEmail); err != nil {
		// Lifecycle messages are fire-and-forget; the fanout already
		// logged the failure.
		_ = err
	}
}
