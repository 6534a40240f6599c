package file

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gpu-price-tracker/src/data_source/marketplace"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// FileSource serves listings from a saved availability body. It is used for
// offline runs and replaying captured responses.
type FileSource struct {
	Path   string
	Logger *logger.Logger

	once     sync.Once
	listings []models.RawListing
	err      error
}

func NewFileSource(path string, log *logger.Logger) *FileSource {
	if log == nil {
		log = logger.Discard("FileSource")
	}
	return &FileSource{Path: path, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *FileSource) Name() string {
	return "file:" + s.Path
}

// -----------------------------------------------------------------------------

func (s *FileSource) load() {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		s.err = fmt.Errorf("failed to read fixture %s: %w", s.Path, err)
		return
	}
	listings, skipped, err := marketplace.ParseAvailability(data)
	if err != nil {
		s.err = fmt.Errorf("fixture %s: %w", s.Path, err)
		return
	}
	if skipped > 0 {
		s.Logger.Warning("Fixture %s: skipped %d offers without a price", s.Path, skipped)
	}
	s.listings = listings
}

// -----------------------------------------------------------------------------

func (s *FileSource) FetchListings(ctx context.Context, gpuType string) ([]models.RawListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}

	var out []models.RawListing
	for _, l := range s.listings {
		if l.GPUType == gpuType {
			out = append(out, l)
		}
	}
	return out, nil
}
