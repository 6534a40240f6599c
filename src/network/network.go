package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gpu-price-tracker/src/helpers"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: bad status %d", e.URL, e.StatusCode)
}

// -----------------------------------------------------------------------------

type HTTPNetworkManager struct {
	Config    *models.MConfig
	Client    *http.Client
	Logger    *logger.Logger
	APIKey    string
	BaseDelay time.Duration
}

// -----------------------------------------------------------------------------

func NewHTTPNetworkManager(cfg *models.MConfig, log *logger.Logger) *HTTPNetworkManager {
	if log == nil {
		log = logger.Discard("Network")
	}
	return &HTTPNetworkManager{
		Config: cfg,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
		Logger:    log,
		APIKey:    cfg.Marketplace.APIKey,
		BaseDelay: time.Second,
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries. Client errors other than 429 are
// not retried.
func (nm *HTTPNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqURL.RawQuery = q.Encode()
	finalURL := reqURL.String()

	return helpers.RetryWithBackoff(nm.Logger, "GET "+finalURL, nm.Config.Network.MaxRetries, nm.BaseDelay, func() ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, &helpers.PermanentError{Err: err}
		}
		return nm.do(ctx, finalURL)
	})
}

// -----------------------------------------------------------------------------

func (nm *HTTPNetworkManager) do(ctx context.Context, finalURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, &helpers.PermanentError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if ua := nm.Config.Network.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if nm.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+nm.APIKey)
	}

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		statusErr := &StatusError{URL: finalURL, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, &helpers.PermanentError{Err: statusErr}
		}
		nm.Logger.Info("Bad status %d from %s", resp.StatusCode, finalURL)
		return nil, statusErr
	}

	return io.ReadAll(resp.Body)
}
