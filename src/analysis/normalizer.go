package analysis

import (
	"strings"

	"gpu-price-tracker/src/analysis/core"
	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/models"
)

// SocketPartitions maps a GPU type to the socket types tracked as separate
// series. GPU types absent from the map use the implicit socket bucket.
type SocketPartitions map[string][]string

// Sockets returns the tracked sockets for gpuType and whether it is split.
func (p SocketPartitions) Sockets(gpuType string) ([]string, bool) {
	sockets, ok := p[gpuType]
	return sockets, ok
}

// Keys expands the tracked GPU types into series keys, in configuration order.
func (p SocketPartitions) Keys(gpuTypes []string) []models.SeriesKey {
	var keys []models.SeriesKey
	for _, gpu := range gpuTypes {
		if sockets, ok := p[gpu]; ok {
			for _, s := range sockets {
				keys = append(keys, models.SeriesKey{GPUType: gpu, SocketType: s})
			}
			continue
		}
		keys = append(keys, models.SeriesKey{GPUType: gpu})
	}
	return keys
}

// -----------------------------------------------------------------------------

// Normalizer turns raw marketplace rows into per-GPU priced listings.
type Normalizer struct {
	Partitions SocketPartitions
}

func NewNormalizer(partitions map[string][]string) *Normalizer {
	return &Normalizer{Partitions: SocketPartitions(partitions)}
}

// -----------------------------------------------------------------------------

// Normalize validates one listing, prices it per GPU and resolves its series
// key. It has no side effects.
func (n *Normalizer) Normalize(raw models.RawListing) (models.NormalizedListing, error) {
	if raw.GPUType == "" {
		return models.NormalizedListing{}, helpers.NewInvalidListingError(raw, "missing gpu type")
	}
	if raw.GPUCount <= 0 {
		return models.NormalizedListing{}, helpers.NewInvalidListingError(raw, "gpu_count must be >= 1")
	}
	if !core.IsFinite(raw.PricePerHour) || raw.PricePerHour < 0 {
		return models.NormalizedListing{}, helpers.NewInvalidListingError(raw, "price must be a finite non-negative number")
	}

	key, err := n.resolveKey(raw)
	if err != nil {
		return models.NormalizedListing{}, err
	}

	if raw.Provider == "" {
		raw.Provider = "unknown"
	}
	if raw.Location == "" {
		raw.Location = "N/A"
	}
	if raw.Socket == "" {
		raw.Socket = "N/A"
	}

	return models.NormalizedListing{
		RawListing:  raw,
		PricePerGPU: raw.PricePerHour / float64(raw.GPUCount),
		Key:         key,
	}, nil
}

func (n *Normalizer) resolveKey(raw models.RawListing) (models.SeriesKey, error) {
	sockets, split := n.Partitions.Sockets(raw.GPUType)
	if !split {
		return models.SeriesKey{GPUType: raw.GPUType}, nil
	}
	for _, s := range sockets {
		if strings.EqualFold(s, raw.Socket) {
			return models.SeriesKey{GPUType: raw.GPUType, SocketType: s}, nil
		}
	}
	return models.SeriesKey{}, helpers.NewInvalidListingError(raw, "socket "+raw.Socket+" is not tracked for "+raw.GPUType)
}

// -----------------------------------------------------------------------------

// NormalizeAll normalizes a batch, dropping invalid rows. The rejected rows'
// errors are returned alongside the valid listings, in input order.
func (n *Normalizer) NormalizeAll(raws []models.RawListing) ([]models.NormalizedListing, []error) {
	listings := make([]models.NormalizedListing, 0, len(raws))
	var rejected []error
	for _, raw := range raws {
		l, err := n.Normalize(raw)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		listings = append(listings, l)
	}
	return listings, rejected
}
