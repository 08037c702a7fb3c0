package helpers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"finnie/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type FinnieError struct {
	Message string
	Cause   error
}

func (e *FinnieError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FinnieError) Unwrap() error {
	return e.Cause
}

// Helper to define distinct error types for type assertions if needed
type ConfigurationError struct{ FinnieError }
type NetworkError struct{ FinnieError }
type DatabaseError struct{ FinnieError }
type ValidationError struct{ FinnieError }

// UnavailableError is a collaborator (language model, market data, knowledge)
// that failed, timed out, or is not configured. Responders fall back on it.
type UnavailableError struct{ FinnieError }

// ContractError is a caller bug: unknown role, empty input. It is never
// turned into fallback text.
type ContractError struct{ FinnieError }

// ErrNotFound is reported by market data for unknown tickers.
var ErrNotFound = errors.New("not found")

// HTTPStatusError is a non-2xx answer from an upstream HTTP service.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, body)
}

// -----------------------------------------------------------------------------

func Unavailable(what string, cause error) error {
	return &UnavailableError{FinnieError{Message: what + " unavailable", Cause: cause}}
}

func ContractViolation(format string, args ...interface{}) error {
	return &ContractError{FinnieError{Message: fmt.Sprintf(format, args...)}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{FinnieError{Message: fmt.Sprintf(format, args...)}}
}

func NewConfigurationError(cause error) error {
	return &ConfigurationError{FinnieError{Message: "config validation failed", Cause: cause}}
}

func NewDatabaseError(operation string, cause error) error {
	return &DatabaseError{FinnieError{Message: operation + " failed", Cause: cause}}
}

func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

func IsContractViolation(err error) bool {
	var c *ContractError
	return errors.As(err, &c)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with
// exponential backoff. It gives up early when ctx is done.
func RetryWithBackoff[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 || !retryable(err) {
			break
		}

		delay := baseDelay * (1 << attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// 4xx answers other than 429 will not get better on retry.
func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var status *HTTPStatusError
	if errors.As(err, &status) {
		return status.StatusCode == 429 || status.StatusCode >= 500 || status.StatusCode == 403
	}
	return true
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler counts collaborator failures per operation for the health report.
type ErrorHandler struct {
	Logger *logger.Logger

	mu     sync.Mutex
	counts map[string]int
	total  int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{
		Logger: log,
		counts: make(map[string]int),
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.counts = make(map[string]int)
	e.total = 0
}

// -----------------------------------------------------------------------------

// Handle logs and counts a failure. Contract violations are logged at error
// level; everything else is a warning since a fallback follows.
func (e *ErrorHandler) Handle(err error, operation string) {
	if err == nil {
		return
	}

	e.mu.Lock()
	e.counts[operation]++
	e.total++
	e.mu.Unlock()

	if IsContractViolation(err) {
		e.Logger.Error("Error in %s: %v", operation, err)
		return
	}
	e.Logger.Warning("Error in %s: %v", operation, err)
}

// -----------------------------------------------------------------------------

// Snapshot returns the failure counts, worst first in Top.
func (e *ErrorHandler) Snapshot() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()

	ops := make([]string, 0, len(e.counts))
	for op := range e.counts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if e.counts[ops[i]] != e.counts[ops[j]] {
			return e.counts[ops[i]] > e.counts[ops[j]]
		}
		return strings.Compare(ops[i], ops[j]) < 0
	})

	byOp := make(map[string]int, len(e.counts))
	for k, v := range e.counts {
		byOp[k] = v
	}
	return map[string]interface{}{
		"total":        e.total,
		"by_operation": byOp,
		"top":          ops,
	}
}
