package entity

import "errors"

// Domain errors shared by repositories, services and handlers.
// Matched with errors.Is after wrapping.
var (
	// ErrSlotTaken: the target slot has no remaining capacity, including
	// the concurrent-race-lost case surfaced by the storage constraint.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrBookingNotFound: unknown booking id.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDateNotBookable: past date, whole-day block, or no active config.
	ErrDateNotBookable = errors.New("date is not bookable")

	// ErrNoSlotConfig: no active TimeSlotConfig for the day of week.
	// Surfaced to callers as "no availability", not as a fault.
	ErrNoSlotConfig = errors.New("no slot configuration for this day")

	// ErrInvalidSlot: the requested time is not one of the generated
	// candidate slots for the date.
	ErrInvalidSlot = errors.New("time does not match a configured slot")
)
