package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gpu-price-tracker/src/analysis/core"
	"gpu-price-tracker/src/models"
)

// SmoothingAlpha is the EMA weight of the newest point.
const SmoothingAlpha = 0.3

// -----------------------------------------------------------------------------

// TimeWindow is a look-back span. The zero value means the whole series.
type TimeWindow struct {
	Span time.Duration
}

func AllTime() TimeWindow { return TimeWindow{} }

// Longest look-backs that fit in a time.Duration.
const (
	MaxWindowDays  int64 = math.MaxInt64 / int64(24*time.Hour)
	MaxWindowHours int64 = math.MaxInt64 / int64(time.Hour)
)

// LastDays is a window of n days. n is clamped to MaxWindowDays.
func LastDays(n int) TimeWindow {
	if int64(n) > MaxWindowDays {
		n = int(MaxWindowDays)
	}
	return TimeWindow{Span: time.Duration(n) * 24 * time.Hour}
}

// LastHours is a window of n hours. n is clamped to MaxWindowHours.
func LastHours(n int) TimeWindow {
	if int64(n) > MaxWindowHours {
		n = int(MaxWindowHours)
	}
	return TimeWindow{Span: time.Duration(n) * time.Hour}
}

// DaysWindow validates n before building the window.
func DaysWindow(n int) (TimeWindow, error) {
	if n <= 0 || int64(n) > MaxWindowDays {
		return TimeWindow{}, fmt.Errorf("window of %d days out of range [1, %d]", n, MaxWindowDays)
	}
	return LastDays(n), nil
}

// HoursWindow validates n before building the window.
func HoursWindow(n int) (TimeWindow, error) {
	if n <= 0 || int64(n) > MaxWindowHours {
		return TimeWindow{}, fmt.Errorf("window of %d hours out of range [1, %d]", n, MaxWindowHours)
	}
	return LastHours(n), nil
}

func (w TimeWindow) IsAll() bool { return w.Span <= 0 }

func (w TimeWindow) Cutoff(now time.Time) time.Time { return now.Add(-w.Span) }

func (w TimeWindow) String() string {
	if w.IsAll() {
		return "all"
	}
	if w.Span%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", int(w.Span/(24*time.Hour)))
	}
	return w.Span.String()
}

// ParseTimeWindow accepts "all", a bare day count ("7"), "<n>d" or any
// time.ParseDuration string ("48h").
func ParseTimeWindow(s string) (TimeWindow, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "all":
		return AllTime(), nil
	case strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return TimeWindow{}, fmt.Errorf("invalid window %q", s)
		}
		return DaysWindow(n)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return DaysWindow(n)
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return TimeWindow{}, fmt.Errorf("invalid window %q", s)
	}
	return TimeWindow{Span: d}, nil
}

// -----------------------------------------------------------------------------

// BucketRule applies to windows up to MaxSpan. A nil Key disables bucketing.
type BucketRule struct {
	Name    string
	MaxSpan time.Duration
	Key     BucketKeyFunc
}

// DefaultBucketPolicy is ordered by MaxSpan. Windows longer than the last
// rule use it; the "all" window uses AllTimeRule.
var DefaultBucketPolicy = []BucketRule{
	{Name: "raw", MaxSpan: 24 * time.Hour},
	{Name: "90m", MaxSpan: 3 * 24 * time.Hour, Key: BlockBucket(90 * time.Minute)},
	{Name: "4h", MaxSpan: 7 * 24 * time.Hour, Key: BlockBucket(4 * time.Hour)},
	{Name: "day", MaxSpan: math.MaxInt64, Key: DayBucket},
}

var AllTimeRule = BucketRule{Name: "week", Key: WeekBucket}

// RuleFor picks the bucketing rule for a window.
func RuleFor(w TimeWindow) BucketRule {
	if w.IsAll() {
		return AllTimeRule
	}
	for _, rule := range DefaultBucketPolicy {
		if w.Span <= rule.MaxSpan {
			return rule
		}
	}
	return DefaultBucketPolicy[len(DefaultBucketPolicy)-1]
}

// -----------------------------------------------------------------------------

// TrendQuery carries the view parameters. Now is the only clock input.
type TrendQuery struct {
	Window TimeWindow
	Smooth bool
	Now    time.Time
}

// TrendResolver turns a full series into display points.
type TrendResolver struct {
	Resampler *TimeSeriesResampler
}

func NewTrendResolver() *TrendResolver {
	return &TrendResolver{Resampler: &TimeSeriesResampler{}}
}

// -----------------------------------------------------------------------------

// Resolve filters, buckets and optionally smooths a series. The same inputs
// always produce the same output.
func (r *TrendResolver) Resolve(series []models.Snapshot, q TrendQuery) []models.DisplayPoint {
	indices := r.filter(series, q)
	if len(indices) == 0 {
		return []models.DisplayPoint{}
	}

	rule := RuleFor(q.Window)
	var points []models.DisplayPoint
	if rule.Key == nil {
		points = r.rawPoints(series, indices)
	} else {
		points = r.bucketPoints(series, indices, rule.Key)
	}

	if q.Smooth {
		points = Smooth(points, SmoothingAlpha)
	}
	return points
}

// filter keeps snapshots inside the window that carry price stats.
func (r *TrendResolver) filter(series []models.Snapshot, q TrendQuery) []int {
	cutoff := q.Window.Cutoff(q.Now)
	var out []int
	for i := range series {
		if series[i].PriceStats == nil {
			continue
		}
		if !q.Window.IsAll() && series[i].Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (r *TrendResolver) rawPoints(series []models.Snapshot, indices []int) []models.DisplayPoint {
	points := make([]models.DisplayPoint, 0, len(indices))
	for _, i := range indices {
		s := &series[i]
		points = append(points, models.DisplayPoint{
			Timestamp: s.Timestamp,
			PriceStats: models.DisplayStats{
				Min:    s.PriceStats.Min,
				Median: s.PriceStats.Median,
				Max:    s.PriceStats.Max,
			},
			Source:      s,
			SourceIndex: i,
			BucketSize:  1,
		})
	}
	return points
}

// bucketPoints averages min/median/max per bucket. The point's timestamp and
// source come from the bucket's middle snapshot (index n/2 by time).
func (r *TrendResolver) bucketPoints(series []models.Snapshot, indices []int, key BucketKeyFunc) []models.DisplayPoint {
	timestamps := make([]time.Time, len(indices))
	for pos, i := range indices {
		timestamps[pos] = series[i].Timestamp
	}

	buckets := r.Resampler.ResampleIndices(timestamps, key)
	points := make([]models.DisplayPoint, 0, len(buckets))
	for _, b := range buckets {
		var mins, medians, maxes []float64
		for _, pos := range b.Indices {
			ps := series[indices[pos]].PriceStats
			mins = append(mins, ps.Min)
			medians = append(medians, ps.Median)
			maxes = append(maxes, ps.Max)
		}

		mid := indices[b.Indices[len(b.Indices)/2]]
		points = append(points, models.DisplayPoint{
			Timestamp: series[mid].Timestamp,
			PriceStats: models.DisplayStats{
				Min:    core.Mean(mins),
				Median: core.Mean(medians),
				Max:    core.Mean(maxes),
			},
			Source:       &series[mid],
			SourceIndex:  mid,
			IsAggregated: len(b.Indices) > 1,
			BucketSize:   len(b.Indices),
		})
	}
	return points
}

// -----------------------------------------------------------------------------

// Smooth applies an exponential moving average to min, median and max
// independently, seeded with the first point. Sources and flags are kept.
func Smooth(points []models.DisplayPoint, alpha float64) []models.DisplayPoint {
	if len(points) == 0 {
		return []models.DisplayPoint{}
	}

	out := make([]models.DisplayPoint, len(points))
	out[0] = points[0]
	for i := 1; i < len(points); i++ {
		prev := out[i-1].PriceStats
		raw := points[i].PriceStats
		out[i] = points[i]
		out[i].PriceStats = models.DisplayStats{
			Min:    core.EMA(alpha, raw.Min, prev.Min),
			Median: core.EMA(alpha, raw.Median, prev.Median),
			Max:    core.EMA(alpha, raw.Max, prev.Max),
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// SelectSnapshot resolves a display point to its underlying snapshot.
func SelectSnapshot(p models.DisplayPoint) *models.Snapshot {
	return p.Source
}
