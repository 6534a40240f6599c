package analysis

import (
	"sort"
	"time"

	"gpu-price-tracker/src/analysis/core"
	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/models"
)

// Partition groups listings by series key. Keys are returned in first-seen
// order and listings keep their input order within a group.
func Partition(listings []models.NormalizedListing) ([]models.SeriesKey, map[models.SeriesKey][]models.NormalizedListing) {
	groups := make(map[models.SeriesKey][]models.NormalizedListing)
	var order []models.SeriesKey
	for _, l := range listings {
		if _, ok := groups[l.Key]; !ok {
			order = append(order, l.Key)
		}
		groups[l.Key] = append(groups[l.Key], l)
	}
	return order, groups
}

// -----------------------------------------------------------------------------

// Aggregator computes one Snapshot per series and capture instant.
type Aggregator struct{}

// Aggregate summarises the listings of one series. An empty set yields
// helpers.ErrEmptyPartition and no snapshot.
func (a *Aggregator) Aggregate(key models.SeriesKey, ts time.Time, listings []models.NormalizedListing) (*models.Snapshot, error) {
	if len(listings) == 0 {
		return nil, helpers.ErrEmptyPartition
	}

	return &models.Snapshot{
		Timestamp:    ts.UTC(),
		GPUType:      key.GPUType,
		SocketType:   key.SocketType,
		PriceStats:   priceStats(listings),
		Availability: availability(listings),
		ByProvider:   providerStats(listings),
		ByConfig:     configStats(listings),
	}, nil
}

// -----------------------------------------------------------------------------

func priceStats(listings []models.NormalizedListing) *models.PriceStats {
	prices := make([]float64, len(listings))
	for i, l := range listings {
		prices[i] = l.PricePerGPU
	}
	sorted := core.SortedCopy(prices)

	return &models.PriceStats{
		Min:    sorted[0],
		Median: core.Median(sorted),
		Max:    sorted[len(sorted)-1],
		Mean:   core.Mean(sorted),
		P10:    core.Percentile(sorted, 10),
		P25:    core.Percentile(sorted, 25),
		P75:    core.Percentile(sorted, 75),
		P90:    core.Percentile(sorted, 90),
	}
}

// availability is nil when no listing reports a stock status.
func availability(listings []models.NormalizedListing) *models.Availability {
	signal := false
	a := &models.Availability{Total: len(listings)}
	for _, l := range listings {
		if l.StockStatus != "" {
			signal = true
		}
		switch l.StockStatus {
		case models.StockAvailable:
			a.Available++
		case models.StockLow:
			a.Low++
		case models.StockMedium:
			a.Medium++
		case models.StockHigh:
			a.High++
		}
	}
	if !signal {
		return nil
	}
	return a
}

func providerStats(listings []models.NormalizedListing) map[string]models.ProviderStats {
	prices := make(map[string][]float64)
	for _, l := range listings {
		prices[l.Provider] = append(prices[l.Provider], l.PricePerGPU)
	}

	out := make(map[string]models.ProviderStats, len(prices))
	for provider, p := range prices {
		sorted := core.SortedCopy(p)
		out[provider] = models.ProviderStats{
			Count: len(p),
			Min:   sorted[0],
			Avg:   core.Mean(p),
		}
	}
	return out
}

// configStats groups by GPU count. best_deal is the first listing, in input
// order, whose per-GPU price equals the group minimum.
func configStats(listings []models.NormalizedListing) map[string]models.ConfigStats {
	groups := make(map[int][]models.NormalizedListing)
	for _, l := range listings {
		groups[l.GPUCount] = append(groups[l.GPUCount], l)
	}

	out := make(map[string]models.ConfigStats, len(groups))
	for count, group := range groups {
		best := group[0]
		perGPU := make([]float64, len(group))
		for i, l := range group {
			perGPU[i] = l.PricePerGPU
			if l.PricePerGPU < best.PricePerGPU {
				best = l
			}
		}
		avg := core.Mean(perGPU)

		out[models.ConfigLabel(count)] = models.ConfigStats{
			Count:     len(group),
			MinPerGPU: best.PricePerGPU,
			AvgPerGPU: avg,
			MinTotal:  best.PricePerGPU * float64(count),
			AvgTotal:  avg * float64(count),
			BestDeal: models.BestDeal{
				Provider: best.Provider,
				Location: best.Location,
				Socket:   best.Socket,
				Spot:     best.IsSpot,
			},
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// SortedConfigLabels returns by_config keys ordered by ascending GPU count.
func SortedConfigLabels(byConfig map[string]models.ConfigStats) []string {
	labels := make([]string, 0, len(byConfig))
	for label := range byConfig {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ni, erri := models.ParseConfigLabel(labels[i])
		nj, errj := models.ParseConfigLabel(labels[j])
		if erri != nil || errj != nil || ni == nj {
			return labels[i] < labels[j]
		}
		return ni < nj
	})
	return labels
}
