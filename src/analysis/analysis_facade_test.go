package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpu-price-tracker/src/models"
)

func newTestFacade() *AnalysisFacade {
	cfg := &models.MConfig{
		Tracking: models.MTrackingConfig{
			GPUTypes:         []string{"H100_80GB", "B200_180GB"},
			SocketPartitions: testPartitions,
		},
	}
	return NewAnalysisFacade(cfg, nil)
}

func TestSummarize(t *testing.T) {
	f := newTestFacade()
	ts := utc("2025-10-20T12:00:00Z")
	raws := []models.RawListing{
		{Provider: "A", GPUType: "H100_80GB", GPUCount: 8, PricePerHour: 8.0, Socket: "SXM5", StockStatus: "Available"},
		{Provider: "B", GPUType: "H100_80GB", GPUCount: 8, PricePerHour: 16.0, Socket: "SXM5"},
		{Provider: "C", GPUType: "H100_80GB", GPUCount: 0, PricePerHour: 3.0, Socket: "PCIe"},
		{Provider: "D", GPUType: "RTX4090_24GB", GPUCount: 1, PricePerHour: 0.4},
	}

	res := f.Summarize(ts, raws)

	require.Len(t, res.Snapshots, 1)
	assert.Equal(t, "H100_80GB_SXM5", res.Snapshots[0].Key().ID())
	assert.Equal(t, 2, res.Snapshots[0].ByConfig["8x"].Count)
	assert.Len(t, res.Rejected, 1)
	assert.Equal(t, []models.SeriesKey{
		{GPUType: "H100_80GB", SocketType: "PCIe"},
		{GPUType: "B200_180GB"},
	}, res.Skipped)

	assert.Equal(t, 4, res.Metrics.ListingsFetched)
	assert.Equal(t, 1, res.Metrics.ListingsDropped)
	assert.Equal(t, 2, res.Metrics.PartitionsSkipped)
}

func TestSummarizeNoListings(t *testing.T) {
	res := newTestFacade().Summarize(utc("2025-10-20T12:00:00Z"), nil)
	assert.Empty(t, res.Snapshots)
	assert.Len(t, res.Skipped, 3)
}

func TestSummaryLine(t *testing.T) {
	s := snap(utc("2025-10-20T12:00:00Z"), 1.5, 2.25, 3)
	s.PriceStats.Mean = 2.2
	s.Availability = &models.Availability{Total: 5, Available: 3}

	assert.Equal(t, "$1.50 - $3.00 per GPU (avg: $2.20, median: $2.25), 3/5 available", SummaryLine(&s))
	assert.Equal(t, "no price data", SummaryLine(&models.Snapshot{}))
}

func TestMedianChangeAndTrendSummary(t *testing.T) {
	prev := snap(utc("2025-10-20T12:00:00Z"), 1, 2, 3)
	cur := snap(utc("2025-10-20T16:00:00Z"), 1, 2.5, 3)

	change, ok := MedianChange(&cur, &prev)
	require.True(t, ok)
	assert.InDelta(t, 0.25, change, 1e-12)

	_, ok = MedianChange(&cur, nil)
	assert.False(t, ok)

	points := NewTrendResolver().Resolve([]models.Snapshot{prev, cur}, TrendQuery{Window: LastDays(1), Now: utc("2025-10-21T00:00:00Z")})
	sum := SummarizeTrend(points)
	assert.Equal(t, 2, sum.Points)
	assert.InDelta(t, 2.25, sum.MeanMedian, 1e-12)
	assert.InDelta(t, 0.25, sum.StdMedian, 1e-12)
	assert.InDelta(t, 0.25, sum.ChangePercent, 1e-12)
	assert.Equal(t, TrendSummary{}, SummarizeTrend(nil))
}
