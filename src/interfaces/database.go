package interfaces

import (
	"context"
	"time"

	"gpu-price-tracker/src/models"
)

// -----------------------------------------------------------------------------
// ISeriesStore defines the contract for the append-only snapshot series.
// -----------------------------------------------------------------------------

type ISeriesStore interface {

	// -----------------------------------------------------------------------------

	// Initialize creates directories, schema and tables. Existing data is kept.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Append adds a snapshot to the end of its series. A snapshot older than
	// the last stored one is rejected with an OutOfOrderSnapshotError and the
	// series is left unchanged.
	Append(ctx context.Context, snapshot *models.Snapshot) error

	// -----------------------------------------------------------------------------

	// Read returns the whole series in insertion order. A series that was
	// never written is empty, not an error.
	Read(ctx context.Context, key models.SeriesKey) ([]models.Snapshot, error)

	// -----------------------------------------------------------------------------

	// Latest returns the last snapshot of a series, nil when it is empty.
	Latest(ctx context.Context, key models.SeriesKey) (*models.Snapshot, error)

	// -----------------------------------------------------------------------------

	// Keys lists the stored series.
	Keys(ctx context.Context) ([]models.SeriesKey, error)

	// -----------------------------------------------------------------------------

	// Close the underlying files or connections
	Close() error
}

// -----------------------------------------------------------------------------
// IArchive stores the raw listings of a run. It has no read contract.
// -----------------------------------------------------------------------------

type IArchive interface {
	Write(ts time.Time, listings []models.RawListing) (string, error)
}
