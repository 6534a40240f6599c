package helpers

import (
	"errors"
	"testing"
	"time"

	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindsUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(NewDataLoadError("H100_80GB_SXM5", cause))

	var loadErr *DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "H100_80GB_SXM5", loadErr.SeriesID)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "H100_80GB_SXM5")
}

func TestOutOfOrderMessage(t *testing.T) {
	last := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)
	err := NewOutOfOrderSnapshotError("B200_180GB", last, last.Add(-time.Hour))
	assert.Contains(t, err.Error(), "2025-10-19T11:00:00Z")
	assert.Contains(t, err.Error(), "2025-10-19T12:00:00Z")
}

func TestInvalidListingError(t *testing.T) {
	err := NewInvalidListingError(models.RawListing{Provider: "A", GPUType: "H100_80GB"}, "gpu_count must be >= 1")
	assert.Equal(t, "invalid listing A/H100_80GB: gpu_count must be >= 1", err.Error())
}

func TestRetryWithBackoffEventuallySucceeds(t *testing.T) {
	calls := 0
	got, err := RetryWithBackoff(logger.Discard("test"), "fetch", 3, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffStopsOnPermanent(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(nil, "fetch", 5, time.Millisecond, func() (string, error) {
		calls++
		return "", &PermanentError{Err: errors.New("unauthorized")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestRetryWithBackoffExhausts(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(nil, "fetch", 2, time.Millisecond, func() (int, error) {
		calls++
		return 0, errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
