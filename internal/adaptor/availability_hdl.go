package adaptor

import (
	"errors"
	"net/http"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/dto/response"
	"interview-booking/internal/usecase"
	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	service usecase.AvailabilityService
	log     *zap.Logger
}

func NewAvailabilityHandler(service usecase.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log.With(zap.String("handler", "availability")),
	}
}

// GetAvailability handles GET /api/availability?date=YYYY-MM-DD (public)
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		utils.ResponseBadRequest(w, "date query parameter is required", nil)
		return
	}

	date, err := utils.ParseDate(dateParam)
	if err != nil {
		utils.ResponseBadRequest(w, "date must be formatted as YYYY-MM-DD", nil)
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), date)
	if err != nil {
		// Missing configuration means no availability for that day,
		// not an internal fault.
		if errors.Is(err, entity.ErrNoSlotConfig) {
			utils.ResponseSuccess(w, "no slots available for this date", &response.AvailabilityResponse{
				Date:  dateParam,
				Slots: []response.SlotResponse{},
			})
			return
		}

		h.log.Error("Failed to get availability",
			zap.Error(err),
			zap.String("date", dateParam),
		)
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", &response.AvailabilityResponse{
		Date:  dateParam,
		Slots: slots,
	})
}
