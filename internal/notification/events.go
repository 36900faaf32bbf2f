package notification

import (
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/dto/response"
)

type EventType string

const (
	EventCreated     EventType = "created"
	EventUpdated     EventType = "updated"
	EventCancelled   EventType = "cancelled"
	EventRescheduled EventType = "rescheduled"
)

// Live-session roles. Role membership itself is the transport
// collaborator's concern; the core only addresses channels.
const (
	RoleAdmin       = "admin"
	RoleInterviewer = "interviewer"
)

// Event is one lifecycle notification carrying the full current booking.
// Rescheduled events additionally carry the vacated date/time.
type Event struct {
	Type    EventType                `json:"type"`
	Booking response.BookingResponse `json:"booking"`
	OldDate string                   `json:"old_date,omitempty"`
	OldTime string                   `json:"old_time,omitempty"`
	At      time.Time                `json:"at"`
}

func NewEvent(eventType EventType, booking *entity.Booking) Event {
	return Event{
		Type:    eventType,
		Booking: response.BookingToResponse(booking),
		At:      time.Now(),
	}
}

func NewRescheduledEvent(booking *entity.Booking, oldDate time.Time, oldTime string) Event {
	event := NewEvent(EventRescheduled, booking)
	event.OldDate = oldDate.Format("2006-01-02")
	event.OldTime = oldTime
	return event
}
