package entity

// TimeSlotConfig defines the bookable window for one day of the week.
// Maintained by the admin collaborator, read-only to the core.
// DayOfWeek follows time.Weekday (0 = Sunday).
type TimeSlotConfig struct {
	Base
	DayOfWeek    int    `db:"day_of_week"`
	StartTime    string `db:"start_time"` // "HH:MM"
	EndTime      string `db:"end_time"`   // "HH:MM"
	SlotDuration int    `db:"slot_duration"` // minutes
	Capacity     int    `db:"capacity"`      // bookings per slot
	Active       bool   `db:"active"`
}
