package marketplace

import (
	"encoding/json"
	"fmt"
	"sort"

	"gpu-price-tracker/src/models"
)

// AvailabilityResponse is the body of the availability endpoint: offers
// grouped by GPU type.
type AvailabilityResponse map[string][]GPUOffer

type GPUOffer struct {
	CloudID     string       `json:"cloudId"`
	GPUType     string       `json:"gpuType"`
	Socket      string       `json:"socket"`
	Provider    string       `json:"provider"`
	DataCenter  string       `json:"dataCenter"`
	Country     string       `json:"country"`
	GPUCount    int          `json:"gpuCount"`
	GPUMemory   *float64     `json:"gpuMemory"`
	VCPU        *ResourceCfg `json:"vcpu"`
	Memory      *ResourceCfg `json:"memory"`
	StockStatus string       `json:"stockStatus"`
	Security    string       `json:"security"`
	IsSpot      *bool        `json:"isSpot"`
	Prices      OfferPrices  `json:"prices"`
}

type ResourceCfg struct {
	DefaultCount *int `json:"defaultCount"`
}

type OfferPrices struct {
	Price     *float64 `json:"price"`
	OnDemand  *float64 `json:"onDemand"`
	Community *float64 `json:"communityPrice"`
	Currency  string   `json:"currency"`
}

// -----------------------------------------------------------------------------

// ParseAvailability decodes an availability body into raw listings. Offers
// without any price are skipped. Group keys are visited in sorted order so
// the output order only depends on the body.
func ParseAvailability(data []byte) ([]models.RawListing, int, error) {
	var resp AvailabilityResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode availability: %w", err)
	}

	groups := make([]string, 0, len(resp))
	for g := range resp {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var listings []models.RawListing
	skipped := 0
	for _, g := range groups {
		for _, offer := range resp[g] {
			l, ok := offer.toRawListing(g)
			if !ok {
				skipped++
				continue
			}
			listings = append(listings, l)
		}
	}
	return listings, skipped, nil
}

// -----------------------------------------------------------------------------

func (o GPUOffer) toRawListing(group string) (models.RawListing, bool) {
	price := o.Prices.Price
	if price == nil {
		price = o.Prices.OnDemand
	}
	if price == nil {
		price = o.Prices.Community
	}
	if price == nil {
		return models.RawListing{}, false
	}

	gpuType := o.GPUType
	if gpuType == "" {
		gpuType = group
	}
	location := o.Country
	if location == "" {
		location = o.DataCenter
	}

	l := models.RawListing{
		CloudID:      o.CloudID,
		Provider:     o.Provider,
		Location:     location,
		GPUType:      gpuType,
		GPUCount:     o.GPUCount,
		Socket:       o.Socket,
		PricePerHour: *price,
		IsSpot:       o.IsSpot != nil && *o.IsSpot,
		StockStatus:  o.StockStatus,
		Security:     o.Security,
		GPUMemoryGB:  o.GPUMemory,
	}
	if o.VCPU != nil {
		l.VCPUs = o.VCPU.DefaultCount
	}
	if o.Memory != nil {
		l.MemoryGB = o.Memory.DefaultCount
	}
	return l, true
}
