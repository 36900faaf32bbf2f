package repository

import (
	"interview-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Booking     BookingRepository
	SlotConfig  SlotConfigRepository
	BlockedDate BlockedDateRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Booking:     NewBookingRepository(db, log),
		SlotConfig:  NewSlotConfigRepository(db, log),
		BlockedDate: NewBlockedDateRepository(db, log),
	}
}
