// Package dateutil provides calendar intervals and the date-range syntax of
// the time filter.
//
// All dates are civil dates represented as midnight UTC.
package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// Interval is a calendar granularity used to bucket a report.
type Interval int

const (
	Day Interval = iota
	Week
	Month
	Quarter
	Year
)

func (i Interval) String() string {
	switch i {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	}
	return "interval"
}

// ParseInterval accepts both the noun ("month") and the adverb ("monthly").
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	case "quarter", "quarterly":
		return Quarter, nil
	case "year", "yearly":
		return Year, nil
	}
	return 0, fmt.Errorf("invalid interval %q", s)
}

// UnmarshalText lets intervals be decoded from flags and config files.
func (i *Interval) UnmarshalText(text []byte) error {
	v, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Date returns the civil date of t.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOf returns the first day of the interval containing d. Weeks start on Monday.
func StartOf(d time.Time, interval Interval) time.Time {
	d = Date(d)
	switch interval {
	case Week:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case Month:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Quarter:
		startMonth := time.Month((int(d.Month())-1)/3*3 + 1)
		return time.Date(d.Year(), startMonth, 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return d
}

// Next returns the first day of the interval following the one containing d.
func Next(d time.Time, interval Interval) time.Time {
	start := StartOf(d, interval)
	switch interval {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Quarter:
		return start.AddDate(0, 3, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 0, 1)
}

// Bucket is a half-open date range [Begin, End).
type Bucket struct {
	Begin time.Time
	End   time.Time
}

// Contains reports whether d lies within the bucket.
func (b Bucket) Contains(d time.Time) bool {
	return !d.Before(b.Begin) && d.Before(b.End)
}

// Tuples slices [first, last] into contiguous calendar-aligned buckets. The
// first bucket starts at the interval boundary on or before first, and the
// last one is the first to end after last. A zero first, or first after last,
// yields no buckets.
func Tuples(first, last time.Time, interval Interval) []Bucket {
	if first.IsZero() {
		return nil
	}
	first, last = Date(first), Date(last)
	if first.After(last) {
		return nil
	}
	var buckets []Bucket
	for begin := StartOf(first, interval); !begin.After(last); {
		end := Next(begin, interval)
		buckets = append(buckets, Bucket{Begin: begin, End: end})
		begin = end
	}
	return buckets
}

// DaysInPeriod returns the number of days of the interval containing d.
func DaysInPeriod(d time.Time, interval Interval) int {
	return int(Next(d, interval).Sub(StartOf(d, interval)).Hours() / 24)
}

// Days returns every day in [begin, end).
func Days(begin, end time.Time) []time.Time {
	var days []time.Time
	for d := Date(begin); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Label renders the interval containing d the way report columns name it.
func Label(d time.Time, interval Interval) string {
	switch interval {
	case Week:
		y, w := d.ISOWeek()
		return fmt.Sprintf("%dW%02d", y, w)
	case Month:
		return d.Format("Jan 2006")
	case Quarter:
		return fmt.Sprintf("%dQ%d", d.Year(), (int(d.Month())-1)/3+1)
	case Year:
		return d.Format("2006")
	}
	return d.Format("2006-01-02")
}
