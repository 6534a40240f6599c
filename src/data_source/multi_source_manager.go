package datasource

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// DefaultConcurrency bounds parallel fetches per collection.
const DefaultConcurrency = 4

// CollectResult holds the listings of one capture and the fetches that
// failed, keyed by FailureKey.
type CollectResult struct {
	Listings []models.RawListing
	Failed   map[string]error
}

// FailureKey names one fetch: "<source>/<gpu_type>".
func FailureKey(source, gpuType string) string {
	return source + "/" + gpuType
}

// MultiSourceManager queries every registered source for every tracked GPU
// type. Results are ordered by source registration, then GPU type order.
type MultiSourceManager struct {
	Sources     []interfaces.IListingSource
	Concurrency int
	Logger      *logger.Logger
	mu          sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMultiSourceManager(sources []interfaces.IListingSource, log *logger.Logger) *MultiSourceManager {
	if log == nil {
		log = logger.Discard("MultiSourceManager")
	}
	return &MultiSourceManager{
		Sources:     sources,
		Concurrency: DefaultConcurrency,
		Logger:      log,
	}
}

// -----------------------------------------------------------------------------

// AddSource registers a source. Names must be unique.
func (m *MultiSourceManager) AddSource(source interfaces.IListingSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.Sources {
		if s.Name() == source.Name() {
			return fmt.Errorf("source %s already exists", source.Name())
		}
	}
	m.Sources = append(m.Sources, source)
	m.Logger.Info("Added source: %s", source.Name())
	return nil
}

// -----------------------------------------------------------------------------

// Collect fetches all GPU types from all sources. A failed fetch is logged
// and recorded; the remaining GPU types are still collected. An error is
// returned only when every fetch failed.
func (m *MultiSourceManager) Collect(ctx context.Context, gpuTypes []string) (CollectResult, error) {
	m.mu.RLock()
	sources := append([]interfaces.IListingSource(nil), m.Sources...)
	m.mu.RUnlock()

	type job struct {
		source  interfaces.IListingSource
		gpuType string
	}
	var jobs []job
	for _, s := range sources {
		for _, g := range gpuTypes {
			jobs = append(jobs, job{source: s, gpuType: g})
		}
	}

	results := make([][]models.RawListing, len(jobs))
	errs := make([]error, len(jobs))

	concurrency := m.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	// Fetch errors are kept per job; every goroutine returns nil.
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			listings, err := j.source.FetchListings(ctx, j.gpuType)
			if err != nil {
				m.Logger.Error("Error fetching %s from %s: %v", j.gpuType, j.source.Name(), err)
				errs[i] = err
				return nil
			}
			results[i] = listings
			return nil
		})
	}
	_ = g.Wait()

	out := CollectResult{Failed: make(map[string]error)}
	failures := 0
	for i, j := range jobs {
		if errs[i] != nil {
			failures++
			out.Failed[FailureKey(j.source.Name(), j.gpuType)] = errs[i]
			continue
		}
		out.Listings = append(out.Listings, results[i]...)
	}

	m.Logger.Info("Fetched %d/%d GPU type queries, %d listings", len(jobs)-failures, len(jobs), len(out.Listings))
	if len(jobs) > 0 && failures == len(jobs) {
		return out, fmt.Errorf("all fetches failed: %w", errs[0])
	}
	return out, nil
}
