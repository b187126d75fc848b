package ops

import (
	"context"
	"net/http"

	"github.com/chromalens/chromalens-go/internal/rest"
)

// System exposes server-level operations that live outside any tenant scope.
type System struct {
	d dispatcher
}

func NewSystem(d dispatcher) *System {
	return &System{d: d}
}

// Heartbeat returns the server's nanosecond heartbeat counter.
func (s *System) Heartbeat(ctx context.Context) (int64, error) {
	var out struct {
		Nanosecond int64 `json:"nanosecond heartbeat"`
	}
	modern := rest.Request{Method: http.MethodGet, Version: rest.V2, Path: "heartbeat"}
	legacy := &rest.Request{Method: http.MethodGet, Version: rest.V1, Path: "heartbeat"}
	if err := s.d.JSON(ctx, "heartbeat", modern, legacy, &out); err != nil {
		return 0, err
	}
	return out.Nanosecond, nil
}

// Version returns the server version string.
func (s *System) Version(ctx context.Context) (string, error) {
	var out string
	modern := rest.Request{Method: http.MethodGet, Version: rest.V2, Path: "version"}
	legacy := &rest.Request{Method: http.MethodGet, Version: rest.V1, Path: "version"}
	if err := s.d.JSON(ctx, "version", modern, legacy, &out); err != nil {
		return "", err
	}
	return out, nil
}

// Reset wipes the entire server state. The server must be started with reset
// enabled or this returns a validation error from the backend.
func (s *System) Reset(ctx context.Context) (bool, error) {
	var out bool
	modern := rest.Request{Method: http.MethodPost, Version: rest.V2, Path: "reset"}
	legacy := &rest.Request{Method: http.MethodPost, Version: rest.V1, Path: "reset"}
	if err := s.d.JSON(ctx, "reset", modern, legacy, &out); err != nil {
		return false, err
	}
	return out, nil
}

// PreFlightChecks reports server capability limits such as the maximum batch
// size. Older servers do not expose the endpoint on the modern path.
func (s *System) PreFlightChecks(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	modern := rest.Request{Method: http.MethodGet, Version: rest.V2, Path: "pre-flight-checks"}
	legacy := &rest.Request{Method: http.MethodGet, Version: rest.V1, Path: "pre-flight-checks"}
	if err := s.d.JSON(ctx, "pre_flight_checks", modern, legacy, &out); err != nil {
		return nil, err
	}
	return out, nil
}
