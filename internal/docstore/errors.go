package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout marks a store operation that exceeded its execution budget.
var ErrTimeout = errors.New("docstore: operation timed out")

// ValidationError reports malformed or unresolvable caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TimeoutClassifier lets a driver flag its own timeout errors.
type TimeoutClassifier func(error) bool

// Budget bounds every store call with a maximum execution time.
type Budget struct {
	MaxTime   time.Duration
	IsTimeout TimeoutClassifier
}

// DefaultMaxTime is used when no budget is configured.
const DefaultMaxTime = 25 * time.Second

// Run executes fn under the budget, translating deadline expiry (or a
// driver-reported timeout) into ErrTimeout. op names the call in errors.
func (b Budget) Run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	limit := b.MaxTime
	if limit <= 0 {
		limit = DefaultMaxTime
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(b.IsTimeout != nil && b.IsTimeout(err)) {
		return fmt.Errorf("%s: %w (budget %s): %v", op, ErrTimeout, limit, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
