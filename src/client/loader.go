package client

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/network"
	"gpu-price-tracker/src/storage"
)

// -----------------------------------------------------------------------------

// HTTPSeriesLoader fetches whole series from a tracker server.
type HTTPSeriesLoader struct {
	BaseURL string
	Network interfaces.INetworkManager
}

func NewHTTPSeriesLoader(baseURL string, netMgr interfaces.INetworkManager) *HTTPSeriesLoader {
	return &HTTPSeriesLoader{BaseURL: strings.TrimRight(baseURL, "/"), Network: netMgr}
}

// Load fetches the series. Any non-success status, network or parse error
// is returned as a DataLoadError.
func (l *HTTPSeriesLoader) Load(ctx context.Context, seriesID string) ([]models.Snapshot, error) {
	body, err := l.Network.Get(ctx, l.BaseURL+"/api/series/"+url.PathEscape(seriesID), nil)
	if err != nil {
		return nil, helpers.NewDataLoadError(seriesID, err)
	}
	series, err := storage.ReadSeries(bytes.NewReader(body))
	if err != nil {
		return nil, helpers.NewDataLoadError(seriesID, err)
	}
	return series, nil
}

// -----------------------------------------------------------------------------

// StoreSeriesLoader reads series directly from a store. A series that was
// never written loads as empty.
type StoreSeriesLoader struct {
	Store      interfaces.ISeriesStore
	Partitions map[string][]string
}

func NewStoreSeriesLoader(store interfaces.ISeriesStore, partitions map[string][]string) *StoreSeriesLoader {
	return &StoreSeriesLoader{Store: store, Partitions: partitions}
}

func (l *StoreSeriesLoader) Load(ctx context.Context, seriesID string) ([]models.Snapshot, error) {
	series, err := l.Store.Read(ctx, models.ParseSeriesID(seriesID, l.Partitions))
	if err != nil {
		return nil, helpers.NewDataLoadError(seriesID, err)
	}
	return series, nil
}

// -----------------------------------------------------------------------------

// IsRemote reports whether source names a tracker server rather than a
// directory.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// NewLoader picks the loader for source: a server base URL or a directory
// of jsonl series files. The returned closer releases the store, if any.
func NewLoader(cfg *models.MConfig, source string, log *logger.Logger) (interfaces.ISeriesLoader, func() error, error) {
	if IsRemote(source) {
		return NewHTTPSeriesLoader(source, network.NewHTTPNetworkManager(cfg, log)), func() error { return nil }, nil
	}

	local := *cfg
	local.Storage.SummaryDir = source
	store := storage.NewJSONLSeriesStore(&local, log)
	return NewStoreSeriesLoader(store, cfg.Tracking.SocketPartitions), store.Close, nil
}
