package entity

import (
	"time"
)

// BlockedDate marks a date (or a sub-range of it) as unbookable.
// StartTime/EndTime empty means the whole day is blocked.
type BlockedDate struct {
	BaseSimple
	Date      time.Time `db:"blocked_date"`
	StartTime string    `db:"start_time"` // "HH:MM", optional
	EndTime   string    `db:"end_time"`   // "HH:MM", optional
	Reason    string    `db:"reason"`
	BlockedBy string    `db:"blocked_by"`
}

// WholeDay reports whether the block covers the entire date.
func (b *BlockedDate) WholeDay() bool {
	return b.StartTime == "" || b.EndTime == ""
}
