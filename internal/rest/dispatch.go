package rest

import (
	"context"
	"log/slog"

	"github.com/chromalens/chromalens-go/internal/apierr"
)

// Doer executes one resolved request. *Client implements it; tests substitute
// call-counting fakes.
type Doer interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Dispatcher applies the version-fallback policy uniformly for every logical
// operation: try the modern request, and on failure decide whether the legacy
// shape gets its single attempt.
type Dispatcher struct {
	doer   Doer
	logger *slog.Logger
}

// NewDispatcher wraps a transport with the fallback policy.
func NewDispatcher(doer Doer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{doer: doer, logger: logger}
}

// Do runs the modern request, falling back to legacy at most once.
//
// NotFound from the modern API is authoritative: the resource is confirmed
// absent and probing the legacy API could resurface a stale resource, so the
// error propagates unchanged. Every other failure (transport, 5xx, validation
// rejections from servers that predate the modern shape) earns exactly one
// legacy attempt, whose outcome is final. A nil legacy request marks a
// v2-only operation.
func (d *Dispatcher) Do(ctx context.Context, op string, modern Request, legacy *Request) ([]byte, error) {
	out, err := d.doer.Do(ctx, modern)
	if err == nil {
		return out, nil
	}
	if apierr.IsNotFound(err) {
		return nil, err
	}
	if legacy == nil {
		return nil, err
	}

	d.logger.Debug("falling back to legacy endpoint", "op", op, "error", err)
	return d.doer.Do(ctx, *legacy)
}

// JSON runs Do and decodes the winning response into out (nil discards it).
func (d *Dispatcher) JSON(ctx context.Context, op string, modern Request, legacy *Request, out any) error {
	data, err := d.Do(ctx, op, modern, legacy)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}
