package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteSeriesStore struct {
	sqlSeriesStore
	Config *models.MConfig
}

// -----------------------------------------------------------------------------

func NewSQLiteSeriesStore(cfg *models.MConfig, log *logger.Logger) *SQLiteSeriesStore {
	if log == nil {
		log = logger.Discard("SQLiteStore")
	}
	return &SQLiteSeriesStore{
		sqlSeriesStore: sqlSeriesStore{
			Table:       "snapshots",
			Logger:      log,
			placeholder: func(int) string { return "?" },
		},
		Config: cfg,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteSeriesStore) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dir := filepath.Dir(dsn); dir != "." && dsn != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create db dir %s: %w", dir, err)
		}
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	// single writer
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteSeriesStore) createTables() error {
	// SQLite types: INTEGER for int64, TEXT for string
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			series_id TEXT NOT NULL,
			gpu_type TEXT NOT NULL,
			socket_type TEXT NOT NULL,
			seq INTEGER NOT NULL,
			captured_at INTEGER NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (series_id, seq)
		);
	`, d.Table)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.Table, err)
	}
	return nil
}
