package interfaces

import (
	"context"

	"gpu-price-tracker/src/models"
)

// -----------------------------------------------------------------------------
// ISeriesLoader is the client-side fetch interface. Failures surface as
// DataLoadError carrying the attempted series id.
// -----------------------------------------------------------------------------

type ISeriesLoader interface {
	Load(ctx context.Context, seriesID string) ([]models.Snapshot, error)
}
