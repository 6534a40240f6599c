package storage

import (
	"fmt"

	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// -----------------------------------------------------------------------------

// NewSeriesStore builds the store selected by storage.backend. The store is
// not initialized.
func NewSeriesStore(cfg *models.MConfig, log *logger.Logger) (interfaces.ISeriesStore, error) {
	switch cfg.Storage.Backend {
	case "", "jsonl":
		return NewJSONLSeriesStore(cfg, log), nil
	case "sqlite":
		return NewSQLiteSeriesStore(cfg, log), nil
	case "postgres":
		return NewPostgresSeriesStore(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
