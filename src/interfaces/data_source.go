package interfaces

import (
	"context"

	"gpu-price-tracker/src/models"
)

// -----------------------------------------------------------------------------
// IListingSource provides the raw marketplace listings of one capture.
// -----------------------------------------------------------------------------

type IListingSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchListings returns every listing currently offered for gpuType.
	FetchListings(ctx context.Context, gpuType string) ([]models.RawListing, error)
}
