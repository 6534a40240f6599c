package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// -----------------------------------------------------------------------------

// sqlSeriesStore holds the queries shared by the SQL backends. Each row
// stores one snapshot as its JSON payload; seq preserves insertion order.
type sqlSeriesStore struct {
	DB     *sql.DB
	Table  string
	Logger *logger.Logger

	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
}

// -----------------------------------------------------------------------------

func (d *sqlSeriesStore) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func (d *sqlSeriesStore) Append(ctx context.Context, snapshot *models.Snapshot) error {
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	key := snapshot.Key()

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	last, seq, err := d.lastRow(ctx, tx, key.ID())
	if err != nil {
		return err
	}
	if err := checkOrder(last, snapshot); err != nil {
		return err
	}

	query := d.bind(fmt.Sprintf(`
		INSERT INTO %s (series_id, gpu_type, socket_type, seq, captured_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.Table))
	if _, err := tx.ExecContext(ctx, query, key.ID(), key.GPUType, key.SocketType, seq+1,
		snapshot.Timestamp.UTC().UnixNano(), string(payload)); err != nil {
		return fmt.Errorf("failed to append to series %s: %w", key.ID(), err)
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *sqlSeriesStore) lastRow(ctx context.Context, tx *sql.Tx, id string) (*models.Snapshot, int64, error) {
	query := d.bind(fmt.Sprintf(`SELECT seq, payload FROM %s WHERE series_id = ? ORDER BY seq DESC LIMIT 1`, d.Table))

	var seq int64
	var payload string
	err := tx.QueryRowContext(ctx, query, id).Scan(&seq, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	snap, err := decodeSnapshot([]byte(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("series %s row %d: %w", id, seq, err)
	}
	return &snap, seq, nil
}

// -----------------------------------------------------------------------------

func (d *sqlSeriesStore) Read(ctx context.Context, key models.SeriesKey) ([]models.Snapshot, error) {
	query := d.bind(fmt.Sprintf(`SELECT payload FROM %s WHERE series_id = ? ORDER BY seq ASC`, d.Table))
	rows, err := d.DB.QueryContext(ctx, query, key.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []models.Snapshot{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		snap, err := decodeSnapshot([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", key.ID(), err)
		}
		series = append(series, snap)
	}
	return series, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *sqlSeriesStore) Latest(ctx context.Context, key models.SeriesKey) (*models.Snapshot, error) {
	query := d.bind(fmt.Sprintf(`SELECT payload FROM %s WHERE series_id = ? ORDER BY seq DESC LIMIT 1`, d.Table))

	var payload string
	err := d.DB.QueryRowContext(ctx, query, key.ID()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := decodeSnapshot([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", key.ID(), err)
	}
	return &snap, nil
}

// -----------------------------------------------------------------------------

func (d *sqlSeriesStore) Keys(ctx context.Context) ([]models.SeriesKey, error) {
	query := fmt.Sprintf(`SELECT DISTINCT gpu_type, socket_type FROM %s ORDER BY gpu_type, socket_type`, d.Table)
	rows, err := d.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []models.SeriesKey{}
	for rows.Next() {
		var k models.SeriesKey
		if err := rows.Scan(&k.GPUType, &k.SocketType); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *sqlSeriesStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
