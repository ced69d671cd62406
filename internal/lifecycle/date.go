package lifecycle

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of delivery and ordered dates.
const DateLayout = "2006-01-02"

// ParseDeliveryDate parses a YYYY-MM-DD delivery date as midnight in loc.
func ParseDeliveryDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid delivery date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate renders t in loc as YYYY-MM-DD.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether now falls on the calendar date of day, judged in day's location.
func SameDate(now, day time.Time) bool {
	y1, m1, d1 := now.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DeliveryOptions returns the delivery dates a customer can pick at checkout:
// today + 2, + 3 and + 4 days in loc.
func DeliveryOptions(now time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	today := StartOfDay(now.In(loc))
	options := make([]string, 0, 3)
	for i := 2; i <= 4; i++ {
		options = append(options, today.AddDate(0, 0, i).Format(DateLayout))
	}
	return options
}
