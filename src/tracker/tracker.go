package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gpu-price-tracker/src/analysis"
	datasource "gpu-price-tracker/src/data_source"
	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// RunResult describes one tracking pass.
type RunResult struct {
	Timestamp   time.Time
	Written     []models.SeriesKey
	Skipped     []models.SeriesKey
	Rejected    []error
	Failed      map[string]error
	ArchivePath string
	Metrics     models.MProcessingMetrics
}

// Tracker runs the capture pipeline: fetch, normalize, aggregate, append,
// archive. All snapshots of a pass share one capture timestamp.
type Tracker struct {
	Config  *models.MConfig
	Sources *datasource.MultiSourceManager
	Facade  *analysis.AnalysisFacade
	Store   interfaces.ISeriesStore
	Archive interfaces.IArchive // nil disables archiving
	Logger  *logger.Logger
	Now     func() time.Time
}

// -----------------------------------------------------------------------------

func NewTracker(
	cfg *models.MConfig,
	sources *datasource.MultiSourceManager,
	store interfaces.ISeriesStore,
	archive interfaces.IArchive,
	log *logger.Logger,
) *Tracker {
	if log == nil {
		log = logger.Discard("Tracker")
	}
	return &Tracker{
		Config:  cfg,
		Sources: sources,
		Facade:  analysis.NewAnalysisFacade(cfg, log.Named("Analysis")),
		Store:   store,
		Archive: archive,
		Logger:  log,
		Now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// RunOnce performs one pass. Out-of-order snapshots are rejected per series
// and do not fail the pass. Store and archive failures do.
func (t *Tracker) RunOnce(ctx context.Context) (RunResult, error) {
	start := time.Now()
	ts := t.Now().UTC()
	result := RunResult{Timestamp: ts}

	t.Logger.Info("Tracking run at %s for %d GPU types", ts.Format(time.RFC3339), len(t.Config.Tracking.GPUTypes))

	collected, err := t.Sources.Collect(ctx, t.Config.Tracking.GPUTypes)
	result.Failed = collected.Failed
	if err != nil {
		return result, &helpers.TrackerError{Message: "tracking run fetched nothing", Cause: err}
	}

	summary := t.Facade.Summarize(ts, collected.Listings)
	result.Skipped = summary.Skipped
	result.Rejected = summary.Rejected
	result.Metrics = summary.Metrics

	for _, snap := range summary.Snapshots {
		err := t.Store.Append(ctx, snap)
		var ooo *helpers.OutOfOrderSnapshotError
		switch {
		case err == nil:
			result.Written = append(result.Written, snap.Key())
		case errors.As(err, &ooo):
			t.Logger.Warning("Rejected snapshot: %v", err)
			result.Rejected = append(result.Rejected, err)
			result.Metrics.SnapshotsRejected++
		default:
			return result, fmt.Errorf("failed to append %s: %w", snap.Key().ID(), err)
		}
	}
	result.Metrics.SnapshotsWritten = len(result.Written)

	if t.Archive != nil {
		path, err := t.Archive.Write(ts, collected.Listings)
		if err != nil {
			return result, fmt.Errorf("failed to archive run: %w", err)
		}
		result.ArchivePath = path
		t.Logger.Info("Archived %d listings to %s", len(collected.Listings), path)
	}

	result.Metrics.AggregationTimeSeconds = time.Since(start).Seconds()
	t.Logger.Info("Run complete: %d written, %d skipped, %d rejected, %d fetch failures in %.2fs",
		result.Metrics.SnapshotsWritten, result.Metrics.PartitionsSkipped,
		len(result.Rejected), len(result.Failed), result.Metrics.AggregationTimeSeconds)
	return result, nil
}
