package models

// Stock status values reported by the marketplace.
const (
	StockAvailable = "Available"
	StockLow       = "Low"
	StockMedium    = "Medium"
	StockHigh      = "High"
)

// RawListing is one offer as returned by the marketplace API. It only lives
// for the duration of a tracking run (and in the compressed archive).
type RawListing struct {
	CloudID      string   `json:"cloud_id"`
	Provider     string   `json:"provider"`
	Location     string   `json:"location"`
	GPUType      string   `json:"gpu_type"`
	GPUCount     int      `json:"gpu_count"`
	Socket       string   `json:"socket"`
	PricePerHour float64  `json:"price_per_hour"`
	IsSpot       bool     `json:"is_spot"`
	StockStatus  string   `json:"stock_status"`
	Security     string   `json:"security,omitempty"`
	VCPUs        *int     `json:"vcpus,omitempty"`
	MemoryGB     *int     `json:"memory_gb,omitempty"`
	GPUMemoryGB  *float64 `json:"gpu_memory_gb,omitempty"`
}

// NormalizedListing is a RawListing priced per GPU and assigned to a series.
type NormalizedListing struct {
	RawListing
	PricePerGPU float64
	Key         SeriesKey
}
