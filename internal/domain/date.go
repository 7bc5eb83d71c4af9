package domain

import (
	"fmt"
	"time"
)

// DateFormat is the wire and storage format for log dates.
const DateFormat = "2006-01-02"

// ParseDate validates a YYYY-MM-DD date string and returns its canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.Format(DateFormat), nil
}

// Today returns today's date in the local timezone as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(DateFormat)
}

// PreviousDay returns the date one day before the given YYYY-MM-DD date.
func PreviousDay(date string) (string, error) {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, -1).Format(DateFormat), nil
}

// NextDay returns the date one day after the given YYYY-MM-DD date.
func NextDay(date string) (string, error) {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, 1).Format(DateFormat), nil
}
