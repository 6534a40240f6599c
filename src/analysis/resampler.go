package analysis

import (
	"sort"
	"time"
)

// BucketKeyFunc maps a timestamp to the start (unix seconds, UTC) of the
// bucket containing it.
type BucketKeyFunc func(t time.Time) int64

// Bucket is one group of series indices sharing a bucket key, ordered by time.
type Bucket struct {
	Indices   []int
	StartTime int64
}

// TimeSeriesResampler handles time-based resampling calculations.
type TimeSeriesResampler struct{}

// -----------------------------------------------------------------------------

// ResampleIndices groups the positions of timestamps by bucket key. Buckets
// come out in chronological order and each bucket's indices are sorted by
// timestamp, ties keeping their original order.
func (r *TimeSeriesResampler) ResampleIndices(timestamps []time.Time, key BucketKeyFunc) []Bucket {
	if len(timestamps) == 0 {
		return []Bucket{}
	}

	order := make([]int, len(timestamps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return timestamps[order[i]].Before(timestamps[order[j]])
	})

	var results []Bucket
	for _, idx := range order {
		k := key(timestamps[idx])
		if n := len(results); n > 0 && results[n-1].StartTime == k {
			results[n-1].Indices = append(results[n-1].Indices, idx)
			continue
		}
		results = append(results, Bucket{Indices: []int{idx}, StartTime: k})
	}

	return results
}

// -----------------------------------------------------------------------------

// CalculateWindowBoundaries aligns ts (unix seconds) to a fixed window. The
// alignment is relative to the epoch, so any window dividing a day is
// aligned to UTC midnight.
func CalculateWindowBoundaries(ts int64, window int64) (int64, int64) {
	start := ts - (ts % window)
	if ts < 0 && ts%window != 0 {
		start -= window
	}
	return start, start + window
}

// -----------------------------------------------------------------------------

// BlockBucket buckets into fixed UTC-aligned blocks.
func BlockBucket(block time.Duration) BucketKeyFunc {
	seconds := int64(block / time.Second)
	return func(t time.Time) int64 {
		start, _ := CalculateWindowBoundaries(t.Unix(), seconds)
		return start
	}
}

// DayBucket buckets by UTC calendar day.
func DayBucket(t time.Time) int64 {
	return DayStart(t).Unix()
}

// WeekBucket buckets by calendar week starting Monday (UTC).
func WeekBucket(t time.Time) int64 {
	return WeekStart(t).Unix()
}

// DayStart truncates to UTC midnight.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday (UTC midnight) of t's week. Sunday belongs to
// the week that started the previous Monday.
func WeekStart(t time.Time) time.Time {
	day := DayStart(t)
	weekday := int(day.Weekday())
	offset := 1 - weekday
	if day.Weekday() == time.Sunday {
		offset = -6
	}
	return day.AddDate(0, 0, offset)
}
