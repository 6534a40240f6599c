package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/models"
)

var testPartitions = map[string][]string{
	"H100_80GB": {"SXM5", "PCIe"},
	"A100_80GB": {"SXM4", "PCIe"},
}

func TestNormalizePricesPerGPU(t *testing.T) {
	n := NewNormalizer(testPartitions)

	l, err := n.Normalize(models.RawListing{Provider: "A", GPUType: "H100_80GB", GPUCount: 8, Socket: "SXM5", PricePerHour: 19.6})
	require.NoError(t, err)
	assert.Equal(t, 19.6/8, l.PricePerGPU)
	assert.Equal(t, models.SeriesKey{GPUType: "H100_80GB", SocketType: "SXM5"}, l.Key)
}

func TestNormalizeSocketMatchIsCaseInsensitive(t *testing.T) {
	n := NewNormalizer(testPartitions)

	l, err := n.Normalize(models.RawListing{GPUType: "H100_80GB", GPUCount: 1, Socket: "pcie", PricePerHour: 2})
	require.NoError(t, err)
	assert.Equal(t, "PCIe", l.Key.SocketType)
}

func TestNormalizeImplicitBucket(t *testing.T) {
	n := NewNormalizer(testPartitions)

	l, err := n.Normalize(models.RawListing{GPUType: "RTX4090_24GB", GPUCount: 2, PricePerHour: 1})
	require.NoError(t, err)
	assert.Equal(t, models.SeriesKey{GPUType: "RTX4090_24GB"}, l.Key)
	assert.Equal(t, "unknown", l.Provider)
	assert.Equal(t, "N/A", l.Location)
	assert.Equal(t, "N/A", l.Socket)
}

func TestNormalizeRejects(t *testing.T) {
	n := NewNormalizer(testPartitions)
	cases := map[string]models.RawListing{
		"zero count":     {GPUType: "L40S_48GB", GPUCount: 0, PricePerHour: 1},
		"negative count": {GPUType: "L40S_48GB", GPUCount: -2, PricePerHour: 1},
		"negative price": {GPUType: "L40S_48GB", GPUCount: 1, PricePerHour: -0.1},
		"nan price":      {GPUType: "L40S_48GB", GPUCount: 1, PricePerHour: math.NaN()},
		"inf price":      {GPUType: "L40S_48GB", GPUCount: 1, PricePerHour: math.Inf(1)},
		"no gpu type":    {GPUCount: 1, PricePerHour: 1},
		"unknown socket": {GPUType: "H100_80GB", GPUCount: 1, Socket: "NVL", PricePerHour: 1},
	}
	for name, raw := range cases {
		_, err := n.Normalize(raw)
		var invalid *helpers.InvalidListingError
		assert.True(t, errors.As(err, &invalid), name)
	}
}

func TestNormalizeAllKeepsGoodRows(t *testing.T) {
	n := NewNormalizer(testPartitions)
	raws := []models.RawListing{
		{Provider: "A", GPUType: "L40S_48GB", GPUCount: 1, PricePerHour: 1},
		{Provider: "B", GPUType: "L40S_48GB", GPUCount: 0, PricePerHour: 1},
		{Provider: "C", GPUType: "L40S_48GB", GPUCount: 4, PricePerHour: 4},
	}

	listings, rejected := n.NormalizeAll(raws)
	require.Len(t, listings, 2)
	require.Len(t, rejected, 1)
	assert.Equal(t, "A", listings[0].Provider)
	assert.Equal(t, "C", listings[1].Provider)
	assert.Contains(t, rejected[0].Error(), "B/L40S_48GB")
}

func TestPartitionKeys(t *testing.T) {
	keys := SocketPartitions(testPartitions).Keys([]string{"H100_80GB", "L40S_48GB"})
	assert.Equal(t, []models.SeriesKey{
		{GPUType: "H100_80GB", SocketType: "SXM5"},
		{GPUType: "H100_80GB", SocketType: "PCIe"},
		{GPUType: "L40S_48GB"},
	}, keys)
}
