package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// ArchiveTimeLayout names archive files: YYYY-MM-DDTHH-MM-SS.json.gz
const ArchiveTimeLayout = "2006-01-02T15-04-05"

// FullSnapshot is the archived form of one run: every raw listing grouped by
// GPU type.
type FullSnapshot struct {
	Timestamp      time.Time                      `json:"timestamp"`
	Configurations map[string][]models.RawListing `json:"configurations"`
}

// -----------------------------------------------------------------------------

// ArchiveWriter writes gzip-compressed full snapshots. The files are a
// byproduct; nothing in the tracker reads them back.
type ArchiveWriter struct {
	Dir    string
	Level  int
	Logger *logger.Logger
}

func NewArchiveWriter(cfg *models.MConfig, log *logger.Logger) *ArchiveWriter {
	if log == nil {
		log = logger.Discard("Archive")
	}
	return &ArchiveWriter{Dir: cfg.Storage.ArchiveDir, Level: gzip.BestCompression, Logger: log}
}

// -----------------------------------------------------------------------------

// Write stores the listings of the run captured at ts and returns the file path.
func (a *ArchiveWriter) Write(ts time.Time, listings []models.RawListing) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive dir %s: %w", a.Dir, err)
	}

	snapshot := FullSnapshot{
		Timestamp:      ts.UTC(),
		Configurations: make(map[string][]models.RawListing),
	}
	for _, l := range listings {
		snapshot.Configurations[l.GPUType] = append(snapshot.Configurations[l.GPUType], l)
	}

	path := filepath.Join(a.Dir, ts.UTC().Format(ArchiveTimeLayout)+".json.gz")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive %s: %w", path, err)
	}
	defer f.Close()

	zw, err := gzip.NewWriterLevel(f, a.Level)
	if err != nil {
		return "", err
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&snapshot); err != nil {
		zw.Close()
		return "", fmt.Errorf("failed to write archive %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return "", err
	}

	a.Logger.Debug("Archived %d listings to %s", len(listings), path)
	return path, f.Close()
}
