package week

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for every stored date.
const DateLayout = "2006-01-02"

// ErrInvalidWeekday is returned when a configured anchor day is not recognised.
var ErrInvalidWeekday = errors.New("week start day must be a weekday name such as saturday or monday")

// Start returns the most recent occurrence of anchor on or before now,
// truncated to midnight in now's location.
// PRE: none
// POST: Result is a date with no time component and Result.Weekday() == anchor
// INVARIANT: 0 <= now - Result < 7 days
func Start(now time.Time, anchor time.Weekday) time.Time {
	day := Date(now)
	back := (int(day.Weekday()) - int(anchor) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// StartString is Start formatted as YYYY-MM-DD.
func StartString(now time.Time, anchor time.Weekday) string {
	return Format(Start(now, anchor))
}

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Format renders a calendar date.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Parse reads a YYYY-MM-DD date in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// Snap parses a YYYY-MM-DD date and moves it back to the start of its week.
// POST: Result is the anchor day on or before the parsed date
func Snap(s string, anchor time.Weekday) (string, error) {
	t, err := Parse(s, time.UTC)
	if err != nil {
		return "", err
	}
	return StartString(t, anchor), nil
}

// ParseWeekday maps a case-insensitive English day name to a time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name || strings.ToLower(d.String()[:3]) == name {
			return d, nil
		}
	}
	return time.Saturday, ErrInvalidWeekday
}
