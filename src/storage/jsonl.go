package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

const jsonlExt = ".jsonl"

// -----------------------------------------------------------------------------

// JSONLSeriesStore keeps one newline-delimited JSON file per series under
// Dir, named after the series id. This is the canonical persisted format.
type JSONLSeriesStore struct {
	Dir        string
	Partitions map[string][]string
	Logger     *logger.Logger

	mu sync.Mutex
}

// -----------------------------------------------------------------------------

func NewJSONLSeriesStore(cfg *models.MConfig, log *logger.Logger) *JSONLSeriesStore {
	if log == nil {
		log = logger.Discard("JSONLStore")
	}
	return &JSONLSeriesStore{
		Dir:        cfg.Storage.SummaryDir,
		Partitions: cfg.Tracking.SocketPartitions,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *JSONLSeriesStore) Initialize() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create summary dir %s: %w", s.Dir, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *JSONLSeriesStore) path(key models.SeriesKey) string {
	return filepath.Join(s.Dir, key.ID()+jsonlExt)
}

// -----------------------------------------------------------------------------

func (s *JSONLSeriesStore) Append(ctx context.Context, snapshot *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.latest(snapshot.Key())
	if err != nil {
		return err
	}
	if err := checkOrder(last, snapshot); err != nil {
		return err
	}

	line, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path(snapshot.Key()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open series %s: %w", snapshot.Key().ID(), err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to series %s: %w", snapshot.Key().ID(), err)
	}
	return f.Close()
}

// -----------------------------------------------------------------------------

func (s *JSONLSeriesStore) Read(ctx context.Context, key models.SeriesKey) ([]models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return []models.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open series %s: %w", key.ID(), err)
	}
	defer f.Close()

	series, err := ReadSeries(f)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", key.ID(), err)
	}
	return series, nil
}

// -----------------------------------------------------------------------------

// ReadSeries parses newline-delimited snapshots. Blank lines are skipped.
func ReadSeries(r io.Reader) ([]models.Snapshot, error) {
	series := []models.Snapshot{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		snap, err := decodeSnapshot(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		series = append(series, snap)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return series, nil
}

// -----------------------------------------------------------------------------

func (s *JSONLSeriesStore) Latest(ctx context.Context, key models.SeriesKey) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.latest(key)
}

func (s *JSONLSeriesStore) latest(key models.SeriesKey) (*models.Snapshot, error) {
	series, err := s.Read(context.Background(), key)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, nil
	}
	last := series[len(series)-1]
	return &last, nil
}

// -----------------------------------------------------------------------------

func (s *JSONLSeriesStore) Keys(ctx context.Context) ([]models.SeriesKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return []models.SeriesKey{}, nil
	}
	if err != nil {
		return nil, err
	}

	keys := []models.SeriesKey{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), jsonlExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), jsonlExt)
		keys = append(keys, models.ParseSeriesID(id, s.Partitions))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID() < keys[j].ID() })
	return keys, nil
}

// -----------------------------------------------------------------------------

func (s *JSONLSeriesStore) Close() error {
	return nil
}
