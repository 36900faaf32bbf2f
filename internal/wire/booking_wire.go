package wire

import (
	"interview-booking/internal/adaptor"
	"interview-booking/pkg/middleware"
	"interview-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/bookings - Reserve a slot (client-facing)
	r.Post("/api/bookings", bookingHandler.Reserve)

	// ==================== ADMIN ROUTES ====================
	// Booking management; gated by the admin API key, full authentication
	// is the upstream collaborator's job.
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.APIKey(config.Admin.APIKey, log))

		// GET /api/admin/bookings - List bookings with filters
		r.Get("/", bookingHandler.ListBookings)

		// GET /api/admin/bookings/{id} - View booking details
		r.Get("/{id}", bookingHandler.GetBookingByID)

		// PUT /api/admin/bookings/{id}/reschedule - Move to a new slot
		r.Put("/{id}/reschedule", bookingHandler.Reschedule)

		// PUT /api/admin/bookings/{id}/cancel - Cancel, freeing the slot
		r.Put("/{id}/cancel", bookingHandler.CancelBooking)

		// PUT /api/admin/bookings/{id}/complete - Mark interview held
		r.Put("/{id}/complete", bookingHandler.CompleteBooking)
	})
}
