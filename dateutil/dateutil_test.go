package dateutil

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStartOfAndNext(t *testing.T) {
	tests := []struct {
		interval Interval
		date     string
		start    string
		next     string
	}{
		{Day, "2024-02-29", "2024-02-29", "2024-03-01"},
		{Week, "2024-01-03", "2024-01-01", "2024-01-08"},
		{Week, "2024-01-07", "2024-01-01", "2024-01-08"},
		{Week, "2024-01-01", "2024-01-01", "2024-01-08"},
		{Month, "2024-01-31", "2024-01-01", "2024-02-01"},
		{Quarter, "2024-05-15", "2024-04-01", "2024-07-01"},
		{Quarter, "2024-12-31", "2024-10-01", "2025-01-01"},
		{Year, "2024-06-30", "2024-01-01", "2025-01-01"},
	}
	for _, test := range tests {
		t.Run(test.interval.String()+"/"+test.date, func(t *testing.T) {
			assert.Equal(t, d(test.start), StartOf(d(test.date), test.interval))
			assert.Equal(t, d(test.next), Next(d(test.date), test.interval))
		})
	}
}

func TestTuples(t *testing.T) {
	buckets := Tuples(d("2023-01-05"), d("2023-02-10"), Month)
	assert.Equal(t, []Bucket{
		{Begin: d("2023-01-01"), End: d("2023-02-01")},
		{Begin: d("2023-02-01"), End: d("2023-03-01")},
	}, buckets)

	t.Run("Contiguous", func(t *testing.T) {
		for _, interval := range []Interval{Day, Week, Month, Quarter, Year} {
			first, last := d("2021-11-17"), d("2023-03-02")
			buckets := Tuples(first, last, interval)
			assert.True(t, len(buckets) > 0)
			assert.False(t, buckets[0].Begin.After(first))
			assert.True(t, buckets[len(buckets)-1].End.After(last))
			for i := 1; i < len(buckets); i++ {
				assert.Equal(t, buckets[i-1].End, buckets[i].Begin)
			}
		}
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0, len(Tuples(time.Time{}, d("2023-01-01"), Month)))
		assert.Equal(t, 0, len(Tuples(d("2023-02-01"), d("2023-01-01"), Month)))
	})

	t.Run("SingleDay", func(t *testing.T) {
		buckets := Tuples(d("2023-01-01"), d("2023-01-01"), Year)
		assert.Equal(t, []Bucket{{Begin: d("2023-01-01"), End: d("2024-01-01")}}, buckets)
	})
}

func TestDaysInPeriod(t *testing.T) {
	assert.Equal(t, 1, DaysInPeriod(d("2024-02-10"), Day))
	assert.Equal(t, 7, DaysInPeriod(d("2024-02-10"), Week))
	assert.Equal(t, 29, DaysInPeriod(d("2024-02-10"), Month))
	assert.Equal(t, 91, DaysInPeriod(d("2024-02-10"), Quarter))
	assert.Equal(t, 366, DaysInPeriod(d("2024-02-10"), Year))
	assert.Equal(t, 365, DaysInPeriod(d("2023-02-10"), Year))
	assert.Equal(t, 3, len(Days(d("2024-02-28"), d("2024-03-02"))))
}

func TestParseInterval(t *testing.T) {
	i, err := ParseInterval("Monthly")
	assert.NoError(t, err)
	assert.Equal(t, Month, i)

	_, err = ParseInterval("fortnight")
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	now := d("2024-05-15")
	tests := []struct {
		value string
		begin string
		end   string
	}{
		{"2016", "2016-01-01", "2017-01-01"},
		{"2016-03", "2016-03-01", "2016-04-01"},
		{"2016-3-5", "2016-03-05", "2016-03-06"},
		{"2016-W01", "2016-01-04", "2016-01-11"},
		{"2016-q2", "2016-04-01", "2016-07-01"},
		{"month", "2024-05-01", "2024-06-01"},
		{"year-1", "2023-01-01", "2024-01-01"},
		{"quarter+1", "2024-07-01", "2024-10-01"},
		{"today", "2024-05-15", "2024-05-16"},
		{"yesterday", "2024-05-14", "2024-05-15"},
		{"2015 - 2016-06", "2015-01-01", "2016-07-01"},
		{"2015-Q4 to 2016", "2015-10-01", "2017-01-01"},
	}
	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			begin, end, err := ParseRange(test.value, now)
			assert.NoError(t, err)
			assert.Equal(t, d(test.begin), begin)
			assert.Equal(t, d(test.end), end)
		})
	}

	for _, bad := range []string{"", "2016-13", "someday", "2016-W60", "2017 - 2016"} {
		t.Run("invalid/"+bad, func(t *testing.T) {
			_, _, err := ParseRange(bad, now)
			assert.Error(t, err)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "2024Q2", Label(d("2024-05-15"), Quarter))
	assert.Equal(t, "May 2024", Label(d("2024-05-15"), Month))
	assert.Equal(t, "2024W20", Label(d("2024-05-15"), Week))
}
