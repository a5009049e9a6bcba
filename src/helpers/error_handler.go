package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-predictor/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type StockPredictorError struct {
	Message string
	Cause   error
}

func (e *StockPredictorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StockPredictorError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As
type ConfigurationError struct{ StockPredictorError }
type UpstreamUnavailableError struct{ StockPredictorError }
type InvalidTickerError struct{ StockPredictorError }
type InsufficientDataError struct{ StockPredictorError }
type ParseFailureError struct{ StockPredictorError }
type ValidationError struct{ StockPredictorError }
type DatabaseError struct{ StockPredictorError }

// ErrEmptyForecast is returned when a trained model produced no usable prediction.
var ErrEmptyForecast = errors.New("prediction returned no result")

// -----------------------------------------------------------------------------

func NewUpstreamError(message string, cause error) error {
	return &UpstreamUnavailableError{StockPredictorError{Message: message, Cause: cause}}
}

func NewInvalidTickerError() error {
	return &InvalidTickerError{StockPredictorError{Message: "Invalid ticker or no data available"}}
}

func NewInsufficientDataError(message string) error {
	return &InsufficientDataError{StockPredictorError{Message: message}}
}

func NewParseError(message string, cause error) error {
	return &ParseFailureError{StockPredictorError{Message: message, Cause: cause}}
}

func NewValidationError(message string) error {
	return &ValidationError{StockPredictorError{Message: message}}
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{StockPredictorError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

func IsInvalidTicker(err error) bool {
	var target *InvalidTickerError
	return errors.As(err, &target)
}

func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

func IsUpstreamUnavailable(err error) bool {
	var target *UpstreamUnavailableError
	return errors.As(err, &target)
}

func IsParseFailure(err error) bool {
	var target *ParseFailureError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// -----------------------------------------------------------------------------
// HTTP status errors
// -----------------------------------------------------------------------------

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.StatusCode)
}

// StatusCode returns the upstream status wrapped in err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn once plus up to maxRetries more times with
// exponential backoff. Invalid tickers and parse failures are not retried.
func RetryWithBackoff[T any](ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries || IsInvalidTicker(err) || IsParseFailure(err) {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries+1, operation, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
