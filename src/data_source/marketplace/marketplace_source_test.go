package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/network"
)

func TestParseAvailability(t *testing.T) {
	data, err := os.ReadFile("../testdata/availability.json")
	require.NoError(t, err)

	listings, skipped, err := ParseAvailability(data)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, listings, 4)

	// groups are visited in sorted order
	assert.Equal(t, "B200_180GB", listings[0].GPUType)

	a := listings[1]
	assert.Equal(t, "h100-a", a.CloudID)
	assert.Equal(t, "US", a.Location)
	assert.Equal(t, 8.0, a.PricePerHour)
	require.NotNil(t, a.VCPUs)
	assert.Equal(t, 104, *a.VCPUs)
	require.NotNil(t, a.GPUMemoryGB)
	assert.Equal(t, 80.0, *a.GPUMemoryGB)

	b := listings[2]
	assert.Equal(t, 16.0, b.PricePerHour)
	assert.True(t, b.IsSpot)
	assert.Equal(t, models.StockLow, b.StockStatus)

	assert.Equal(t, "eu-west", listings[3].Location)
}

func TestParseAvailabilityRejectsGarbage(t *testing.T) {
	_, _, err := ParseAvailability([]byte(`[1,2`))
	assert.Error(t, err)
}

func TestFetchListings(t *testing.T) {
	body, err := os.ReadFile("../testdata/availability.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/availability/", r.URL.Path)
		assert.Equal(t, "H100_80GB", r.URL.Query().Get("gpu_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer srv.Close()

	cfg := &models.MConfig{
		Network:     models.MNetworkConfig{RequestTimeout: 5},
		Marketplace: models.MMarketplaceConfig{BaseURL: srv.URL + "/", AvailabilityPath: "api/v1/availability/"},
	}
	src := NewMarketplaceSource(cfg, network.NewHTTPNetworkManager(cfg, nil), nil)

	listings, err := src.FetchListings(context.Background(), "H100_80GB")
	require.NoError(t, err)
	require.Len(t, listings, 3)
	for _, l := range listings {
		assert.Equal(t, "H100_80GB", l.GPUType)
	}
}

func TestFetchListingsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := &models.MConfig{
		Network:     models.MNetworkConfig{RequestTimeout: 5},
		Marketplace: models.MMarketplaceConfig{BaseURL: srv.URL, AvailabilityPath: "/api/v1/availability/"},
	}
	src := NewMarketplaceSource(cfg, network.NewHTTPNetworkManager(cfg, nil), nil)

	_, err := src.FetchListings(context.Background(), "H100_80GB")
	assert.ErrorContains(t, err, "network error for H100_80GB")
}
