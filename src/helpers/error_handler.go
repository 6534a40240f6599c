package helpers

import (
	"errors"
	"fmt"
	"time"

	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TrackerError struct {
	Message string
	Cause   error
}

func (e *TrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TrackerError) Unwrap() error {
	return e.Cause
}

// ErrEmptyPartition marks a series with no listings at a capture instant.
// Callers skip the snapshot; it is not a failure.
var ErrEmptyPartition = errors.New("no listings for partition")

// InvalidListingError rejects one malformed listing row.
type InvalidListingError struct {
	TrackerError
	Provider string
	GPUType  string
}

func NewInvalidListingError(l models.RawListing, reason string) *InvalidListingError {
	return &InvalidListingError{
		TrackerError: TrackerError{Message: fmt.Sprintf("invalid listing %s/%s: %s", l.Provider, l.GPUType, reason)},
		Provider:     l.Provider,
		GPUType:      l.GPUType,
	}
}

// OutOfOrderSnapshotError is returned by series stores when an append would
// move the series backwards in time.
type OutOfOrderSnapshotError struct {
	TrackerError
	SeriesID string
	Last     time.Time
	Got      time.Time
}

func NewOutOfOrderSnapshotError(seriesID string, last, got time.Time) *OutOfOrderSnapshotError {
	return &OutOfOrderSnapshotError{
		TrackerError: TrackerError{Message: fmt.Sprintf(
			"snapshot for %s at %s is older than last stored %s",
			seriesID, got.UTC().Format(time.RFC3339), last.UTC().Format(time.RFC3339))},
		SeriesID: seriesID,
		Last:     last,
		Got:      got,
	}
}

// DataLoadError reports a failed series fetch or parse on the read side.
type DataLoadError struct {
	TrackerError
	SeriesID string
}

func NewDataLoadError(seriesID string, cause error) *DataLoadError {
	return &DataLoadError{
		TrackerError: TrackerError{Message: fmt.Sprintf("failed to load data for %s", seriesID), Cause: cause},
		SeriesID:     seriesID,
	}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries+1 times with exponential backoff.
func RetryWithBackoff[T any](log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		var permanent *PermanentError
		if errors.As(err, &permanent) || attempt == maxRetries {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries+1, operation, err, delay)
		}
		time.Sleep(delay)
	}

	return zero, &TrackerError{Message: fmt.Sprintf("%s failed", operation), Cause: lastErr}
}

// PermanentError stops RetryWithBackoff early.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
