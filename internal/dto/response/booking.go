package response

import (
	"time"

	"interview-booking/internal/data/entity"
)

type BookingResponse struct {
	ID          string               `json:"id"`
	ClientName  string               `json:"client_name"`
	ClientEmail string               `json:"client_email"`
	ClientPhone string               `json:"client_phone"`
	Date        string               `json:"date"`
	Time        string               `json:"time"`
	Modality    string               `json:"modality"`
	Status      entity.BookingStatus `json:"status"`
	Notes       string               `json:"notes,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID.String(),
		ClientName:  b.ClientName,
		ClientEmail: b.ClientEmail,
		ClientPhone: b.ClientPhone,
		Date:        b.SlotDate.Format("2006-01-02"),
		Time:        b.SlotTime,
		Modality:    string(b.Modality),
		Status:      b.Status,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
