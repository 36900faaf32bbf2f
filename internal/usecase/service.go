package usecase

import (
	"interview-booking/internal/data/repository"
	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Availability AvailabilityService
	Booking      BookingService
	Reschedule   RescheduleService
}

func NewService(repo *repository.Repository, config *utils.Config, notifier Notifier, log *zap.Logger) *Service {
	availability := NewAvailabilityService(repo, config, log)

	return &Service{
		Availability: availability,
		Booking:      NewBookingService(repo, availability, notifier, log),
		Reschedule:   NewRescheduleService(repo, availability, notifier, log),
	}
}
