package analysis

import (
	"errors"
	"fmt"
	"time"

	"gpu-price-tracker/src/analysis/core"
	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// SummaryResult is the output of one summarization pass.
type SummaryResult struct {
	Snapshots []*models.Snapshot
	Rejected  []error
	Skipped   []models.SeriesKey
	Metrics   models.MProcessingMetrics
}

// TrendSummary describes the medians of a resolved trend.
type TrendSummary struct {
	Points        int
	MeanMedian    float64
	StdMedian     float64
	ChangePercent float64
}

type AnalysisFacade struct {
	Config     *models.MConfig
	Normalizer *Normalizer
	Aggregator *Aggregator
	Resolver   *TrendResolver
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	if log == nil {
		log = logger.Discard("Analysis")
	}
	return &AnalysisFacade{
		Config:     cfg,
		Normalizer: NewNormalizer(cfg.Tracking.SocketPartitions),
		Aggregator: &Aggregator{},
		Resolver:   NewTrendResolver(),
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// TrackedKeys lists every series the configuration asks for.
func (a *AnalysisFacade) TrackedKeys() []models.SeriesKey {
	return a.Normalizer.Partitions.Keys(a.Config.Tracking.GPUTypes)
}

// -----------------------------------------------------------------------------

// Summarize turns the raw listings of one capture instant into one snapshot
// per tracked series. Invalid rows are dropped and logged; tracked series
// without listings are reported as skipped. Listings for GPU types that are
// not tracked are ignored.
func (a *AnalysisFacade) Summarize(ts time.Time, raws []models.RawListing) SummaryResult {
	start := time.Now()
	result := SummaryResult{}
	result.Metrics.ListingsFetched = len(raws)

	listings, rejected := a.Normalizer.NormalizeAll(raws)
	for _, err := range rejected {
		a.Logger.Warning("Dropping listing: %v", err)
	}
	result.Rejected = rejected
	result.Metrics.ListingsDropped = len(rejected)

	order, groups := Partition(listings)
	tracked := make(map[models.SeriesKey]bool)
	for _, key := range a.TrackedKeys() {
		tracked[key] = true
	}
	for _, key := range order {
		if !tracked[key] {
			a.Logger.Debug("Ignoring %d listings for untracked series %s", len(groups[key]), key)
		}
	}

	for _, key := range a.TrackedKeys() {
		snap, err := a.Aggregator.Aggregate(key, ts, groups[key])
		if errors.Is(err, helpers.ErrEmptyPartition) {
			a.Logger.Info("%s: no listings", key)
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err != nil {
			a.Logger.Error("%s: aggregation failed: %v", key, err)
			result.Skipped = append(result.Skipped, key)
			continue
		}
		a.Logger.Info("%s: %s", key, SummaryLine(snap))
		result.Snapshots = append(result.Snapshots, snap)
	}

	result.Metrics.PartitionsSkipped = len(result.Skipped)
	result.Metrics.AggregationTimeSeconds = time.Since(start).Seconds()
	return result
}

// -----------------------------------------------------------------------------

// SummaryLine is the one-line run log for a snapshot.
func SummaryLine(s *models.Snapshot) string {
	if s == nil || s.PriceStats == nil {
		return "no price data"
	}
	ps := s.PriceStats
	line := fmt.Sprintf("$%.2f - $%.2f per GPU (avg: $%.2f, median: $%.2f)",
		ps.Min, ps.Max, ps.Mean, ps.Median)
	if s.Availability != nil {
		line += fmt.Sprintf(", %d/%d available", s.Availability.Available, s.Availability.Total)
	}
	return line
}

// -----------------------------------------------------------------------------

// Trend resolves a series for display.
func (a *AnalysisFacade) Trend(series []models.Snapshot, window TimeWindow, smooth bool, now time.Time) []models.DisplayPoint {
	return a.Resolver.Resolve(series, TrendQuery{Window: window, Smooth: smooth, Now: now})
}

// -----------------------------------------------------------------------------

// SummarizeTrend computes the spread of the medians and the change from the
// first to the last point.
func SummarizeTrend(points []models.DisplayPoint) TrendSummary {
	if len(points) == 0 {
		return TrendSummary{}
	}
	medians := make([]float64, len(points))
	for i, p := range points {
		medians[i] = p.PriceStats.Median
	}
	mean, std := core.CalculateMeanStd(medians)
	return TrendSummary{
		Points:        len(points),
		MeanMedian:    mean,
		StdMedian:     std,
		ChangePercent: core.CalculateChangePercent(medians[len(medians)-1], medians[0]),
	}
}

// -----------------------------------------------------------------------------

// MedianChange is the fractional change of the median price between two
// snapshots. ok is false when either side has no price data.
func MedianChange(current, previous *models.Snapshot) (change float64, ok bool) {
	if current == nil || previous == nil || current.PriceStats == nil || previous.PriceStats == nil {
		return 0, false
	}
	return core.CalculateChangePercent(current.PriceStats.Median, previous.PriceStats.Median), true
}
