package models

import (
	"fmt"
	"strings"
	"time"
)

// SeriesKey identifies one series: a GPU type and, for GPU types with several
// form factors, the socket type. An empty SocketType is the implicit bucket.
type SeriesKey struct {
	GPUType    string `json:"gpu_type"`
	SocketType string `json:"socket_type,omitempty"`
}

// ID is the series identifier used for file names and API paths.
func (k SeriesKey) ID() string {
	if k.SocketType == "" {
		return k.GPUType
	}
	return k.GPUType + "_" + k.SocketType
}

func (k SeriesKey) String() string {
	if k.SocketType == "" {
		return k.GPUType
	}
	return fmt.Sprintf("%s (%s)", k.GPUType, k.SocketType)
}

// ParseSeriesID resolves an id against the known socket partitions.
// "H100_80GB_SXM5" -> {H100_80GB, SXM5}; anything else is an implicit bucket.
func ParseSeriesID(id string, partitions map[string][]string) SeriesKey {
	for gpu, sockets := range partitions {
		for _, socket := range sockets {
			if id == gpu+"_"+socket {
				return SeriesKey{GPUType: gpu, SocketType: socket}
			}
		}
	}
	return SeriesKey{GPUType: strings.TrimSpace(id)}
}

// PriceStats is computed over per-GPU prices.
type PriceStats struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

type Availability struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Low       int `json:"low"`
	Medium    int `json:"medium"`
	High      int `json:"high"`
}

type ProviderStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Avg   float64 `json:"avg"`
}

type BestDeal struct {
	Provider string `json:"provider"`
	Location string `json:"location"`
	Socket   string `json:"socket"`
	Spot     bool   `json:"spot"`
}

type ConfigStats struct {
	Count     int      `json:"count"`
	MinPerGPU float64  `json:"min_per_gpu"`
	AvgPerGPU float64  `json:"avg_per_gpu"`
	MinTotal  float64  `json:"min_total"`
	AvgTotal  float64  `json:"avg_total"`
	BestDeal  BestDeal `json:"best_deal"`
}

// Snapshot is the persisted unit: statistics for one series at one capture
// instant. It is never mutated after creation.
type Snapshot struct {
	Timestamp    time.Time                `json:"timestamp"`
	GPUType      string                   `json:"gpu_type"`
	SocketType   string                   `json:"socket_type,omitempty"`
	PriceStats   *PriceStats              `json:"price_stats,omitempty"`
	Availability *Availability            `json:"availability,omitempty"`
	ByProvider   map[string]ProviderStats `json:"by_provider"`
	ByConfig     map[string]ConfigStats   `json:"by_config"`
}

func (s *Snapshot) Key() SeriesKey {
	return SeriesKey{GPUType: s.GPUType, SocketType: s.SocketType}
}

// ConfigLabel formats a GPU count as a by_config key ("8x").
func ConfigLabel(gpuCount int) string {
	return fmt.Sprintf("%dx", gpuCount)
}

// ParseConfigLabel is the inverse of ConfigLabel.
func ParseConfigLabel(label string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSuffix(label, "x"), "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid config label %q: %w", label, err)
	}
	return n, nil
}
