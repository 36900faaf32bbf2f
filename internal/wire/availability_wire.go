package wire

import (
	"interview-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAvailability(r chi.Router, availabilityHandler *adaptor.AvailabilityHandler) {
	// GET /api/availability?date=YYYY-MM-DD - Slot availability (public)
	r.Get("/api/availability", availabilityHandler.GetAvailability)
}
