package models

import "time"

// DisplayStats is the subset of PriceStats carried into display points.
type DisplayStats struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// DisplayPoint is a derived trend point. Source always points at a real
// snapshot of the series it was computed from.
type DisplayPoint struct {
	Timestamp    time.Time    `json:"timestamp"`
	PriceStats   DisplayStats `json:"price_stats"`
	Source       *Snapshot    `json:"-"`
	SourceIndex  int          `json:"source_index"`
	IsAggregated bool         `json:"is_aggregated"`
	BucketSize   int          `json:"bucket_size"`
}
