package domain

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for calendar days.
const DateFormat = "2006-01-02"

// DateRange is an inclusive interval of calendar days. Start and End keep
// their raw timestamps; every comparison is made on UTC calendar days.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: start, End: end}
}

// DayOf returns the UTC midnight of the calendar day t falls on.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the [00:00:00, 23:59:59] range of a single day.
func DayBounds(day time.Time) DateRange {
	start := DayOf(day)
	return DateRange{Start: start, End: start.Add(24*time.Hour - time.Second)}
}

// ParseDay parses a YYYY-MM-DD string as a UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidRange, s)
	}
	return t, nil
}

// FormatDay renders the calendar day of t.
func FormatDay(t time.Time) string {
	return DayOf(t).Format(DateFormat)
}

func (r DateRange) StartDay() time.Time { return DayOf(r.Start) }
func (r DateRange) EndDay() time.Time   { return DayOf(r.End) }

// IsEmptyOrInverted reports start >= end on the raw timestamps. Block and
// request creation reject such ranges.
func (r DateRange) IsEmptyOrInverted() bool {
	return !r.Start.Before(r.End)
}

func (r DateRange) Overlaps(other DateRange) bool {
	return !r.StartDay().After(other.EndDay()) && !other.StartDay().After(r.EndDay())
}

func (r DateRange) Contains(day time.Time) bool {
	d := DayOf(day)
	return !d.Before(r.StartDay()) && !d.After(r.EndDay())
}

// Equal compares two ranges at day granularity.
func (r DateRange) Equal(other DateRange) bool {
	return r.StartDay().Equal(other.StartDay()) && r.EndDay().Equal(other.EndDay())
}

// SpansMoreThan reports whether the range covers more than n calendar days.
// It never enumerates the days.
func (r DateRange) SpansMoreThan(n int) bool {
	if n <= 0 {
		return false
	}
	return r.EndDay().After(r.StartDay().AddDate(0, 0, n-1))
}

// Days lists every calendar day from start to end inclusive, ascending.
// An inverted range yields nothing.
func (r DateRange) Days() []time.Time {
	start, end := r.StartDay(), r.EndDay()
	if start.After(end) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", FormatDay(r.Start), FormatDay(r.End))
}
