package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/models"
)

func normalizeAll(t *testing.T, raws []models.RawListing) []models.NormalizedListing {
	t.Helper()
	listings, rejected := NewNormalizer(testPartitions).NormalizeAll(raws)
	require.Empty(t, rejected)
	return listings
}

func TestAggregateH100EightWayConfig(t *testing.T) {
	listings := normalizeAll(t, []models.RawListing{
		{Provider: "A", GPUType: "H100_80GB", GPUCount: 8, PricePerHour: 8.0, Socket: "SXM5", Location: "US"},
		{Provider: "B", GPUType: "H100_80GB", GPUCount: 8, PricePerHour: 16.0, Socket: "SXM5", IsSpot: true},
	})
	key := models.SeriesKey{GPUType: "H100_80GB", SocketType: "SXM5"}
	ts := utc("2025-10-20T12:00:00Z")

	s, err := (&Aggregator{}).Aggregate(key, ts, listings)
	require.NoError(t, err)

	assert.Equal(t, ts, s.Timestamp)
	assert.Equal(t, key, s.Key())
	cfg, ok := s.ByConfig["8x"]
	require.True(t, ok)
	assert.Equal(t, models.ConfigStats{
		Count:     2,
		MinPerGPU: 1.0,
		AvgPerGPU: 1.5,
		MinTotal:  8.0,
		AvgTotal:  12.0,
		BestDeal:  models.BestDeal{Provider: "A", Location: "US", Socket: "SXM5", Spot: false},
	}, cfg)

	assert.Equal(t, 1.0, s.PriceStats.Min)
	assert.Equal(t, 1.5, s.PriceStats.Median)
	assert.Equal(t, 2.0, s.PriceStats.Max)
	assert.Equal(t, 1.5, s.PriceStats.Mean)
	assert.Nil(t, s.Availability)
}

func TestAggregateBestDealTieBreaksOnFirstSeen(t *testing.T) {
	listings := normalizeAll(t, []models.RawListing{
		{Provider: "X", GPUType: "L40S_48GB", GPUCount: 2, PricePerHour: 3.0},
		{Provider: "Y", GPUType: "L40S_48GB", GPUCount: 2, PricePerHour: 2.0},
		{Provider: "Z", GPUType: "L40S_48GB", GPUCount: 2, PricePerHour: 2.0},
	})

	for i := 0; i < 20; i++ {
		s, err := (&Aggregator{}).Aggregate(models.SeriesKey{GPUType: "L40S_48GB"}, utc("2025-10-20T12:00:00Z"), listings)
		require.NoError(t, err)
		assert.Equal(t, "Y", s.ByConfig["2x"].BestDeal.Provider)
	}
}

func TestAggregateProvidersAndAvailability(t *testing.T) {
	listings := normalizeAll(t, []models.RawListing{
		{Provider: "A", GPUType: "A6000_48GB", GPUCount: 1, PricePerHour: 0.5, StockStatus: models.StockAvailable},
		{Provider: "A", GPUType: "A6000_48GB", GPUCount: 2, PricePerHour: 1.5, StockStatus: models.StockLow},
		{Provider: "B", GPUType: "A6000_48GB", GPUCount: 4, PricePerHour: 2.0, StockStatus: models.StockHigh},
		{Provider: "C", GPUType: "A6000_48GB", GPUCount: 1, PricePerHour: 0.9},
	})

	s, err := (&Aggregator{}).Aggregate(models.SeriesKey{GPUType: "A6000_48GB"}, utc("2025-10-20T12:00:00Z"), listings)
	require.NoError(t, err)

	assert.Equal(t, models.ProviderStats{Count: 2, Min: 0.5, Avg: 0.625}, s.ByProvider["A"])
	assert.Equal(t, models.ProviderStats{Count: 1, Min: 0.5, Avg: 0.5}, s.ByProvider["B"])
	require.NotNil(t, s.Availability)
	assert.Equal(t, models.Availability{Total: 4, Available: 1, Low: 1, High: 1}, *s.Availability)
	assert.Equal(t, []string{"1x", "2x", "4x"}, SortedConfigLabels(s.ByConfig))
}

func TestAggregateEmptyPartition(t *testing.T) {
	s, err := (&Aggregator{}).Aggregate(models.SeriesKey{GPUType: "B200_180GB"}, utc("2025-10-20T12:00:00Z"), nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, helpers.ErrEmptyPartition)
}

func TestAggregateStatsOrdering(t *testing.T) {
	prices := [][]float64{
		{1},
		{3, 1},
		{5, 2, 9, 2},
		{0, 0, 0},
		{7.5, 1.25, 3.3, 12, 0.4, 8.8, 2.2},
	}
	for _, set := range prices {
		var raws []models.RawListing
		for i, p := range set {
			raws = append(raws, models.RawListing{Provider: "P", GPUType: "L40S_48GB", GPUCount: 1 + i%3, PricePerHour: p * float64(1+i%3)})
		}
		s, err := (&Aggregator{}).Aggregate(models.SeriesKey{GPUType: "L40S_48GB"}, utc("2025-10-20T12:00:00Z"), normalizeAll(t, raws))
		require.NoError(t, err)

		ps := s.PriceStats
		assert.LessOrEqual(t, ps.Min, ps.Median, "%v", set)
		assert.LessOrEqual(t, ps.Median, ps.Max, "%v", set)
		assert.LessOrEqual(t, ps.P10, ps.P90, "%v", set)
		for label, cfg := range s.ByConfig {
			n, err := models.ParseConfigLabel(label)
			require.NoError(t, err)
			assert.Equal(t, cfg.MinPerGPU*float64(n), cfg.MinTotal, label)
		}
	}
}

func TestPartitionFirstSeenOrder(t *testing.T) {
	listings := normalizeAll(t, []models.RawListing{
		{GPUType: "H100_80GB", Socket: "PCIe", GPUCount: 1, PricePerHour: 2},
		{GPUType: "L40S_48GB", GPUCount: 1, PricePerHour: 1},
		{GPUType: "H100_80GB", Socket: "SXM5", GPUCount: 1, PricePerHour: 3},
		{GPUType: "H100_80GB", Socket: "PCIe", GPUCount: 1, PricePerHour: 2.5},
	})

	order, groups := Partition(listings)
	assert.Equal(t, []models.SeriesKey{
		{GPUType: "H100_80GB", SocketType: "PCIe"},
		{GPUType: "L40S_48GB"},
		{GPUType: "H100_80GB", SocketType: "SXM5"},
	}, order)
	assert.Len(t, groups[order[0]], 2)
}
