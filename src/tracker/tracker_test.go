package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	datasource "gpu-price-tracker/src/data_source"
	"gpu-price-tracker/src/data_source/file"
	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/storage"
)

const fixture = "../data_source/testdata/availability.json"

var runAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *models.MConfig {
	dir := t.TempDir()
	return &models.MConfig{
		Storage: models.MStorageConfig{
			SummaryDir: filepath.Join(dir, "summary"),
			ArchiveDir: filepath.Join(dir, "full_snapshots"),
		},
		Tracking: models.MTrackingConfig{
			GPUTypes:         []string{"H100_80GB", "B200_180GB", "A100_80GB"},
			SocketPartitions: map[string][]string{"H100_80GB": {"SXM5", "PCIe"}},
		},
	}
}

func newTestTracker(t *testing.T, cfg *models.MConfig, path string, store interfaces.ISeriesStore) *Tracker {
	sources := datasource.NewMultiSourceManager([]interfaces.IListingSource{file.NewFileSource(path, nil)}, nil)
	tr := NewTracker(cfg, sources, store, storage.NewArchiveWriter(cfg, nil), nil)
	tr.Now = func() time.Time { return runAt }
	return tr
}

func jsonlStore(t *testing.T, cfg *models.MConfig) *storage.JSONLSeriesStore {
	store := storage.NewJSONLSeriesStore(cfg, nil)
	require.NoError(t, store.Initialize())
	return store
}

// -----------------------------------------------------------------------------

func TestRunOnceWritesTrackedSeries(t *testing.T) {
	cfg := testConfig(t)
	store := jsonlStore(t, cfg)
	tr := newTestTracker(t, cfg, fixture, store)

	result, err := tr.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.SeriesKey{
		{GPUType: "H100_80GB", SocketType: "SXM5"},
		{GPUType: "H100_80GB", SocketType: "PCIe"},
		{GPUType: "B200_180GB"},
	}, result.Written)
	assert.Equal(t, []models.SeriesKey{{GPUType: "A100_80GB"}}, result.Skipped)
	assert.Equal(t, 3, result.Metrics.SnapshotsWritten)
	assert.Equal(t, 4, result.Metrics.ListingsFetched)

	series, err := store.Read(context.Background(), models.SeriesKey{GPUType: "H100_80GB", SocketType: "SXM5"})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, series[0].Timestamp.Equal(runAt))
	assert.Equal(t, 1.0, series[0].PriceStats.Min)
	assert.Equal(t, 2.0, series[0].PriceStats.Max)

	require.NotEmpty(t, result.ArchivePath)
	assert.Equal(t, "2026-03-01T12-00-00.json.gz", filepath.Base(result.ArchivePath))
	_, err = os.Stat(result.ArchivePath)
	assert.NoError(t, err)
}

func TestRunOnceRejectsOlderCapture(t *testing.T) {
	cfg := testConfig(t)
	store := jsonlStore(t, cfg)
	tr := newTestTracker(t, cfg, fixture, store)

	_, err := tr.RunOnce(context.Background())
	require.NoError(t, err)

	tr.Now = func() time.Time { return runAt.Add(-time.Hour) }
	tr.Archive = nil
	result, err := tr.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Written)
	assert.Equal(t, 3, result.Metrics.SnapshotsRejected)
	for _, rejected := range result.Rejected {
		var ooo *helpers.OutOfOrderSnapshotError
		assert.True(t, errors.As(rejected, &ooo))
	}

	series, err := store.Read(context.Background(), models.SeriesKey{GPUType: "B200_180GB"})
	require.NoError(t, err)
	assert.Len(t, series, 1)
}

func TestRunOnceFailsWhenNothingFetched(t *testing.T) {
	cfg := testConfig(t)
	tr := newTestTracker(t, cfg, filepath.Join(t.TempDir(), "missing.json"), jsonlStore(t, cfg))

	result, err := tr.RunOnce(context.Background())
	require.Error(t, err)
	assert.Len(t, result.Failed, 3)
}

type brokenStore struct {
	*storage.JSONLSeriesStore
}

func (brokenStore) Append(context.Context, *models.Snapshot) error {
	return errors.New("disk full")
}

func TestRunOnceFailsOnStoreError(t *testing.T) {
	cfg := testConfig(t)
	tr := newTestTracker(t, cfg, fixture, brokenStore{jsonlStore(t, cfg)})

	_, err := tr.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
