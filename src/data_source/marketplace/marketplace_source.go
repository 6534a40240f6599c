package marketplace

import (
	"context"
	"fmt"
	"strings"

	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// MarketplaceSource queries the GPU availability API.
type MarketplaceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewMarketplaceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *MarketplaceSource {
	if log == nil {
		log = logger.Discard("MarketplaceSource")
	}
	return &MarketplaceSource{Config: cfg, Network: netMgr, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *MarketplaceSource) Name() string {
	return "marketplace"
}

// -----------------------------------------------------------------------------

func (s *MarketplaceSource) endpoint() string {
	base := strings.TrimRight(s.Config.Marketplace.BaseURL, "/")
	path := s.Config.Marketplace.AvailabilityPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// -----------------------------------------------------------------------------

// FetchListings fetches the current offers for one GPU type.
func (s *MarketplaceSource) FetchListings(ctx context.Context, gpuType string) ([]models.RawListing, error) {
	body, err := s.Network.Get(ctx, s.endpoint(), map[string]string{"gpu_type": gpuType})
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", gpuType, err)
	}

	listings, skipped, err := ParseAvailability(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", gpuType, err)
	}
	if skipped > 0 {
		s.Logger.Warning("%s: skipped %d offers without a price", gpuType, skipped)
	}

	// the API may return neighbouring types for a filter; keep the requested one
	out := listings[:0]
	for _, l := range listings {
		if l.GPUType == gpuType {
			out = append(out, l)
		}
	}
	s.Logger.Info("Fetched %s: %d configurations", gpuType, len(out))
	return out, nil
}
