package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type BookingModality string

const (
	ModalityRemote   BookingModality = "remote"
	ModalityInPerson BookingModality = "in_person"
)

// Booking is the aggregate root: one client's claim on one slot.
// SlotDate carries the date only (midnight UTC), SlotTime is "HH:MM".
type Booking struct {
	Base
	ClientName  string          `db:"client_name"`
	ClientEmail string          `db:"client_email"`
	ClientPhone string          `db:"client_phone"`
	SlotDate    time.Time       `db:"slot_date"`
	SlotTime    string          `db:"slot_time"`
	Modality    BookingModality `db:"modality"`
	Status      BookingStatus   `db:"status"`
	Notes       string          `db:"notes"`

	// Monotonic reminder flags, false -> true only. Mutated exclusively
	// by the sweep's conditional update.
	Reminder24hSent bool `db:"reminder_24h_sent"`
	Reminder1hSent  bool `db:"reminder_1h_sent"`
	FollowupSent    bool `db:"followup_sent"`
}

// IsActive reports whether the booking still occupies its slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// StartsAt combines SlotDate and SlotTime into a single instant.
func (b *Booking) StartsAt() time.Time {
	t, err := time.Parse("15:04", b.SlotTime)
	if err != nil {
		return b.SlotDate
	}
	return b.SlotDate.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}
