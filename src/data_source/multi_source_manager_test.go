package datasource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/models"
)

type stubSource struct {
	name string
	data map[string][]models.RawListing
	fail map[string]bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchListings(_ context.Context, gpuType string) ([]models.RawListing, error) {
	if s.fail[gpuType] {
		return nil, errors.New("boom")
	}
	return s.data[gpuType], nil
}

func TestCollectKeepsOrderAndSurvivesFailures(t *testing.T) {
	src := &stubSource{
		name: "stub",
		data: map[string][]models.RawListing{
			"H100_80GB":  {{Provider: "A", GPUType: "H100_80GB"}, {Provider: "B", GPUType: "H100_80GB"}},
			"B200_180GB": {{Provider: "C", GPUType: "B200_180GB"}},
		},
		fail: map[string]bool{"A100_80GB": true},
	}
	m := NewMultiSourceManager(nil, nil)
	require.NoError(t, m.AddSource(src))
	assert.Error(t, m.AddSource(src))

	res, err := m.Collect(context.Background(), []string{"B200_180GB", "A100_80GB", "H100_80GB"})
	require.NoError(t, err)

	providers := make([]string, len(res.Listings))
	for i, l := range res.Listings {
		providers[i] = l.Provider
	}
	assert.Equal(t, []string{"C", "A", "B"}, providers)
	assert.Contains(t, res.Failed, FailureKey("stub", "A100_80GB"))
}

func TestCollectAllFailed(t *testing.T) {
	m := NewMultiSourceManager([]interfaces.IListingSource{&stubSource{name: "s", fail: map[string]bool{"H100_80GB": true}}}, nil)

	_, err := m.Collect(context.Background(), []string{"H100_80GB"})
	assert.ErrorContains(t, err, "all fetches failed")
}

func TestCollectKeepsFailuresPerSource(t *testing.T) {
	failing := map[string]bool{"H100_80GB": true}
	m := NewMultiSourceManager([]interfaces.IListingSource{
		&stubSource{name: "a", fail: failing},
		&stubSource{name: "b", fail: failing},
		&stubSource{name: "c", data: map[string][]models.RawListing{"H100_80GB": {{Provider: "C"}}}},
	}, nil)
	m.Concurrency = 1

	res, err := m.Collect(context.Background(), []string{"H100_80GB"})
	require.NoError(t, err)
	assert.Len(t, res.Failed, 2)
	assert.Contains(t, res.Failed, "a/H100_80GB")
	assert.Contains(t, res.Failed, "b/H100_80GB")
	require.Len(t, res.Listings, 1)
	assert.Equal(t, "C", res.Listings[0].Provider)
}
