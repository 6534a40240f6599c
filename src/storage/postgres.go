package storage

import (
	"database/sql"
	"fmt"
	"strconv"

	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresSeriesStore struct {
	sqlSeriesStore
	Config *models.MConfig
	Schema string
}

// -----------------------------------------------------------------------------

func NewPostgresSeriesStore(cfg *models.MConfig, log *logger.Logger) *PostgresSeriesStore {
	if log == nil {
		log = logger.Discard("PostgresStore")
	}
	schema := cfg.Storage.DBSchema
	if schema == "" {
		schema = "public"
	}
	return &PostgresSeriesStore{
		sqlSeriesStore: sqlSeriesStore{
			Table:       fmt.Sprintf(`"%s"."snapshots"`, schema),
			Logger:      log,
			placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		},
		Config: cfg,
		Schema: schema,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresSeriesStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresSeriesStore initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSeriesStore) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			series_id TEXT NOT NULL,
			gpu_type TEXT NOT NULL,
			socket_type TEXT NOT NULL,
			seq BIGINT NOT NULL,
			captured_at BIGINT NOT NULL,
			payload JSONB NOT NULL,
			PRIMARY KEY (series_id, seq)
		);
	`, d.Table)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.Table, err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS snapshots_captured_at_idx ON %s (series_id, captured_at)`, d.Table)
	if _, err := d.DB.Exec(index); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", d.Table, err)
	}
	return nil
}
