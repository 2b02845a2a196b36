package chat

import (
	"context"

	"github.com/pkg/errors"
)

var ErrUnavailable = errors.New("assistant is unavailable")

// Service is any backend that can answer a student prompt.
// Implementations must map upstream failures to ErrUnavailable and never leak
// upstream error detail to callers.
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
