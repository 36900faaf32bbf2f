package utils

import (
	"strconv"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// ParseDate parses a YYYY-MM-DD date into midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// FormatDate renders the date part only.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
