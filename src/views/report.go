package views

import (
	"sort"
	"time"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/models"
)

// ConfigRow is one GPU-count configuration of a report.
type ConfigRow struct {
	Label     string  `json:"label"`
	GPUCount  int     `json:"gpu_count"`
	Count     int     `json:"count"`
	MinPerGPU float64 `json:"min_per_gpu"`
	AvgPerGPU float64 `json:"avg_per_gpu"`
	MinTotal  float64 `json:"min_total"`
	AvgTotal  float64 `json:"avg_total"`
	Provider  string  `json:"provider"`
	Location  string  `json:"location"`
	Socket    string  `json:"socket"`
	Spot      bool    `json:"spot"`
}

type ProviderRow struct {
	Provider string  `json:"provider"`
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Avg      float64 `json:"avg"`
}

// Report is the presentation model of one snapshot. The latest snapshot and
// a snapshot selected from a trend go through the same builder.
type Report struct {
	SeriesID     string               `json:"series_id"`
	Title        string               `json:"title"`
	Timestamp    time.Time            `json:"timestamp"`
	PriceStats   *models.PriceStats   `json:"price_stats,omitempty"`
	Availability *models.Availability `json:"availability,omitempty"`
	Configs      []ConfigRow          `json:"configs"`
	Providers    []ProviderRow        `json:"providers"`
	// MedianChange is the fractional change from the previous snapshot.
	MedianChange *float64 `json:"median_change,omitempty"`
}

// -----------------------------------------------------------------------------

// BuildReport builds the report of s. previous may be nil.
func BuildReport(s *models.Snapshot, previous *models.Snapshot) Report {
	r := Report{
		SeriesID:     s.Key().ID(),
		Title:        s.Key().String(),
		Timestamp:    s.Timestamp,
		PriceStats:   s.PriceStats,
		Availability: s.Availability,
		Configs:      []ConfigRow{},
		Providers:    []ProviderRow{},
	}

	for _, label := range analysis.SortedConfigLabels(s.ByConfig) {
		cfg := s.ByConfig[label]
		n, _ := models.ParseConfigLabel(label)
		r.Configs = append(r.Configs, ConfigRow{
			Label:     label,
			GPUCount:  n,
			Count:     cfg.Count,
			MinPerGPU: cfg.MinPerGPU,
			AvgPerGPU: cfg.AvgPerGPU,
			MinTotal:  cfg.MinTotal,
			AvgTotal:  cfg.AvgTotal,
			Provider:  cfg.BestDeal.Provider,
			Location:  cfg.BestDeal.Location,
			Socket:    cfg.BestDeal.Socket,
			Spot:      cfg.BestDeal.Spot,
		})
	}

	for name, p := range s.ByProvider {
		r.Providers = append(r.Providers, ProviderRow{Provider: name, Count: p.Count, Min: p.Min, Avg: p.Avg})
	}
	sort.Slice(r.Providers, func(i, j int) bool {
		if r.Providers[i].Min != r.Providers[j].Min {
			return r.Providers[i].Min < r.Providers[j].Min
		}
		return r.Providers[i].Provider < r.Providers[j].Provider
	})

	if change, ok := analysis.MedianChange(s, previous); ok {
		r.MedianChange = &change
	}
	return r
}

// -----------------------------------------------------------------------------

// BuildLatestReport reports the last snapshot of a series, comparing it with
// the one before. ok is false for an empty series.
func BuildLatestReport(series []models.Snapshot) (Report, bool) {
	if len(series) == 0 {
		return Report{}, false
	}
	var previous *models.Snapshot
	if len(series) > 1 {
		previous = &series[len(series)-2]
	}
	return BuildReport(&series[len(series)-1], previous), true
}
