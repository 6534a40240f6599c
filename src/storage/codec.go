package storage

import (
	"encoding/json"
	"fmt"

	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/models"
)

// -----------------------------------------------------------------------------

// encodeSnapshot serializes one snapshot as a single JSON line (no newline).
// Timestamps are written in UTC.
func encodeSnapshot(s *models.Snapshot) ([]byte, error) {
	c := *s
	c.Timestamp = c.Timestamp.UTC()
	data, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot %s: %w", s.Key().ID(), err)
	}
	return data, nil
}

// -----------------------------------------------------------------------------

func decodeSnapshot(data []byte) (models.Snapshot, error) {
	var s models.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Snapshot{}, err
	}
	s.Timestamp = s.Timestamp.UTC()
	return s, nil
}

// -----------------------------------------------------------------------------

// checkOrder rejects a snapshot older than the last stored one. Equal
// timestamps are accepted.
func checkOrder(last *models.Snapshot, next *models.Snapshot) error {
	if last == nil {
		return nil
	}
	if next.Timestamp.Before(last.Timestamp) {
		return helpers.NewOutOfOrderSnapshotError(next.Key().ID(), last.Timestamp, next.Timestamp)
	}
	return nil
}
