package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearRE     = regexp.MustCompile(`^(\d{4})$`)
	monthRE    = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	dayRE      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	weekRE     = regexp.MustCompile(`^(\d{4})-?[wW](\d{1,2})$`)
	quarterRE  = regexp.MustCompile(`^(\d{4})-?[qQ]([1-4])$`)
	relativeRE = regexp.MustCompile(`^(day|today|week|month|quarter|year)(?:([+-])(\d+))?$`)
	rangeSepRE = regexp.MustCompile(`\s+(?:-|to)\s+`)
)

// ParseRange parses the time filter syntax into a half-open range [begin, end).
//
// Accepted forms:
//
//	2016            the whole year
//	2016-03         a month
//	2016-03-05      a single day
//	2016-W09        an ISO week
//	2016-Q1         a quarter
//	month, year-1   the current interval relative to now, optionally shifted
//	yesterday
//	2016-03 - 2016-06, 2015 to 2016   from the start of the first to the end of the second
func ParseRange(value string, now time.Time) (begin, end time.Time, err error) {
	value = strings.TrimSpace(value)
	if parts := rangeSepRE.Split(value, 2); len(parts) == 2 {
		begin, _, err = parseSingle(parts[0], now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		_, end, err = parseSingle(parts[1], now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if !end.After(begin) {
			return time.Time{}, time.Time{}, fmt.Errorf("empty date range %q", value)
		}
		return begin, end, nil
	}
	return parseSingle(value, now)
}

func parseSingle(value string, now time.Time) (time.Time, time.Time, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	if m := yearRE.FindStringSubmatch(value); m != nil {
		begin := civil(atoi(m[1]), 1, 1)
		return begin, begin.AddDate(1, 0, 0), nil
	}
	if m := monthRE.FindStringSubmatch(value); m != nil {
		month := atoi(m[2])
		if month < 1 || month > 12 {
			return invalid(value)
		}
		begin := civil(atoi(m[1]), month, 1)
		return begin, begin.AddDate(0, 1, 0), nil
	}
	if m := dayRE.FindStringSubmatch(value); m != nil {
		begin, err := time.Parse("2006-1-2", value)
		if err != nil {
			return invalid(value)
		}
		return begin, begin.AddDate(0, 0, 1), nil
	}
	if m := weekRE.FindStringSubmatch(value); m != nil {
		week := atoi(m[2])
		if week < 1 || week > 53 {
			return invalid(value)
		}
		begin := isoWeekStart(atoi(m[1]), week)
		return begin, begin.AddDate(0, 0, 7), nil
	}
	if m := quarterRE.FindStringSubmatch(value); m != nil {
		begin := civil(atoi(m[1]), (atoi(m[2])-1)*3+1, 1)
		return begin, begin.AddDate(0, 3, 0), nil
	}
	if value == "yesterday" {
		end := Date(now)
		return end.AddDate(0, 0, -1), end, nil
	}
	if m := relativeRE.FindStringSubmatch(value); m != nil {
		interval := Day
		if m[1] != "today" {
			interval, _ = ParseInterval(m[1])
		}
		begin := StartOf(now, interval)
		if m[2] != "" {
			n := atoi(m[3])
			if m[2] == "-" {
				n = -n
			}
			begin = shift(begin, interval, n)
		}
		return begin, Next(begin, interval), nil
	}
	return invalid(value)
}

func shift(d time.Time, interval Interval, n int) time.Time {
	switch interval {
	case Week:
		return d.AddDate(0, 0, 7*n)
	case Month:
		return d.AddDate(0, n, 0)
	case Quarter:
		return d.AddDate(0, 3*n, 0)
	case Year:
		return d.AddDate(n, 0, 0)
	}
	return d.AddDate(0, 0, n)
}

// isoWeekStart returns the Monday of ISO week w in year y. January 4th is
// always part of week 1.
func isoWeekStart(y, w int) time.Time {
	jan4 := civil(y, 1, 4)
	monday := StartOf(jan4, Week)
	return monday.AddDate(0, 0, 7*(w-1))
}

func civil(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func invalid(value string) (time.Time, time.Time, error) {
	return time.Time{}, time.Time{}, fmt.Errorf("failed to parse date %q", value)
}
