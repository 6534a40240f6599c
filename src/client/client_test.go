package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/storage"
)

var (
	partitions = map[string][]string{"H100_80GB": {"SXM5", "PCIe"}}
	start      = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func snapshotAt(at time.Time, median float64) *models.Snapshot {
	return &models.Snapshot{
		Timestamp:    at,
		GPUType:      "H100_80GB",
		SocketType:   "SXM5",
		PriceStats:   &models.PriceStats{Min: median - 0.5, Median: median, Max: median + 0.5, Mean: median},
		Availability: &models.Availability{Total: 3, Available: 2},
	}
}

func seededDir(t *testing.T, n int) string {
	dir := filepath.Join(t.TempDir(), "summary")
	cfg := &models.MConfig{
		Storage:  models.MStorageConfig{SummaryDir: dir},
		Tracking: models.MTrackingConfig{SocketPartitions: partitions},
	}
	store := storage.NewJSONLSeriesStore(cfg, nil)
	require.NoError(t, store.Initialize())
	for i := 0; i < n; i++ {
		require.NoError(t, store.Append(context.Background(), snapshotAt(start.Add(time.Duration(i)*time.Hour), 2+float64(i)*0.1)))
	}
	return dir
}

func dirLoader(t *testing.T, dir string) *StoreSeriesLoader {
	cfg := &models.MConfig{
		Storage:  models.MStorageConfig{SummaryDir: dir},
		Tracking: models.MTrackingConfig{SocketPartitions: partitions},
	}
	return NewStoreSeriesLoader(storage.NewJSONLSeriesStore(cfg, nil), partitions)
}

func newViewer(loader *StoreSeriesLoader, now time.Time) *Viewer {
	v := NewViewer(loader)
	v.Now = func() time.Time { return now }
	return v
}

// -----------------------------------------------------------------------------

func TestStoreLoaderMissingSeriesIsEmpty(t *testing.T) {
	series, err := dirLoader(t, seededDir(t, 0)).Load(context.Background(), "B200_180GB")
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestStoreLoaderWrapsParseErrors(t *testing.T) {
	dir := seededDir(t, 2)
	require.NoError(t, writeFile(filepath.Join(dir, "A100_80GB.jsonl"), "{not json}\n"))

	_, err := dirLoader(t, dir).Load(context.Background(), "A100_80GB")
	var loadErr *helpers.DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "A100_80GB", loadErr.SeriesID)
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/series/H100_80GB_SXM5":
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.Write([]byte(`{"timestamp":"2026-03-01T00:00:00Z","gpu_type":"H100_80GB","socket_type":"SXM5","price_stats":{"min":1.5,"median":2,"max":2.5,"mean":2}}` + "\n"))
		case "/api/series/broken":
			w.Write([]byte("{\"timestamp\": 12}\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5, MaxRetries: 0, UserAgent: "test"}}
	loader, closer, err := NewLoader(cfg, srv.URL+"/", nil)
	require.NoError(t, err)
	defer closer()

	series, err := loader.Load(context.Background(), "H100_80GB_SXM5")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 2.0, series[0].PriceStats.Median)

	for _, id := range []string{"B200_180GB", "broken"} {
		_, err = loader.Load(context.Background(), id)
		var loadErr *helpers.DataLoadError
		require.True(t, errors.As(err, &loadErr), id)
		assert.Equal(t, id, loadErr.SeriesID)
	}
}

func TestNewLoaderPicksDirectory(t *testing.T) {
	assert.True(t, IsRemote("https://tracker.example"))
	assert.False(t, IsRemote("data/summary"))

	loader, closer, err := NewLoader(&models.MConfig{}, seededDir(t, 3), nil)
	require.NoError(t, err)
	defer closer()
	_, ok := loader.(*StoreSeriesLoader)
	require.True(t, ok)

	series, err := loader.Load(context.Background(), "H100_80GB_SXM5")
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

// -----------------------------------------------------------------------------

func TestSelectSeriesResolvesPoints(t *testing.T) {
	v := newViewer(dirLoader(t, seededDir(t, 5)), start.Add(5*time.Hour))

	state, err := v.SelectSeries(context.Background(), ViewState{Window: analysis.AllTime()}, "H100_80GB_SXM5")
	require.NoError(t, err)
	assert.Equal(t, "H100_80GB_SXM5", state.SeriesID)
	assert.Len(t, state.Series, 5)
	// all-time uses weekly buckets; five hourly snapshots fall into one.
	require.Len(t, state.Points, 1)
	assert.Equal(t, 5, state.Points[0].BucketSize)
}

func TestSelectSeriesFailureKeepsState(t *testing.T) {
	dir := seededDir(t, 3)
	require.NoError(t, writeFile(filepath.Join(dir, "A100_80GB.jsonl"), "garbage\n"))
	v := newViewer(dirLoader(t, dir), start.Add(3*time.Hour))

	prev, err := v.SelectSeries(context.Background(), ViewState{Window: analysis.LastHours(24)}, "H100_80GB_SXM5")
	require.NoError(t, err)

	next, err := v.SelectSeries(context.Background(), prev, "A100_80GB")
	require.Error(t, err)
	assert.Equal(t, prev.SeriesID, next.SeriesID)
	assert.Equal(t, prev.Points, next.Points)
}

func TestWindowAndSmoothing(t *testing.T) {
	v := newViewer(dirLoader(t, seededDir(t, 5)), start.Add(4*time.Hour))

	state, err := v.SelectSeries(context.Background(), ViewState{Window: analysis.LastHours(24)}, "H100_80GB_SXM5")
	require.NoError(t, err)
	require.Len(t, state.Points, 5)

	narrowed := v.SetWindow(state, analysis.LastHours(2))
	assert.Len(t, narrowed.Points, 3)
	assert.Len(t, state.Points, 5, "input state is not mutated")

	smoothed := v.SetSmoothing(state, true)
	require.Len(t, smoothed.Points, 5)
	assert.InDelta(t, state.Points[0].PriceStats.Median, smoothed.Points[0].PriceStats.Median, 1e-9)
	assert.InDelta(t, 0.3*2.1+0.7*2.0, smoothed.Points[1].PriceStats.Median, 1e-9)
}

func TestSelectPointAndReport(t *testing.T) {
	v := newViewer(dirLoader(t, seededDir(t, 3)), start.Add(2*time.Hour))

	state, err := v.SelectSeries(context.Background(), ViewState{Window: analysis.LastHours(24)}, "H100_80GB_SXM5")
	require.NoError(t, err)

	latest, ok := state.Report()
	require.True(t, ok)
	assert.True(t, latest.Timestamp.Equal(start.Add(2*time.Hour)))

	selected, err := v.SelectPoint(state, 1)
	require.NoError(t, err)
	require.NotNil(t, selected.Selected)
	assert.True(t, selected.Selected.Timestamp.Equal(start.Add(time.Hour)))

	report, ok := selected.Report()
	require.True(t, ok)
	require.NotNil(t, report.MedianChange)
	assert.InDelta(t, 0.05, *report.MedianChange, 1e-9)

	_, err = v.SelectPoint(state, 7)
	assert.Error(t, err)
}

func TestEmptyStateReport(t *testing.T) {
	_, ok := ViewState{}.Report()
	assert.False(t, ok)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
