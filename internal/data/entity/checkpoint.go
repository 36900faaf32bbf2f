package entity

// ReminderCheckpoint names a time threshold at which a reminder or
// follow-up becomes due for a booking.
type ReminderCheckpoint string

const (
	Checkpoint24hBefore ReminderCheckpoint = "24h-before"
	Checkpoint1hBefore  ReminderCheckpoint = "1h-before"
	CheckpointFollowup  ReminderCheckpoint = "followup"
)

// FlagSet returns the state of the flag tracking this checkpoint.
func (c ReminderCheckpoint) FlagSet(b *Booking) bool {
	switch c {
	case Checkpoint24hBefore:
		return b.Reminder24hSent
	case Checkpoint1hBefore:
		return b.Reminder1hSent
	case CheckpointFollowup:
		return b.FollowupSent
	}
	return false
}
