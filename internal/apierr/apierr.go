// Package apierr defines the typed error taxonomy shared by the transport,
// the dispatcher and the resource operations. Every non-2xx response and
// every transport failure maps to exactly one kind.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind classifies an error for fallback and caller decisions.
type Kind int

// Error kinds, one per sentinel.
const (
	KindNotFound Kind = iota + 1
	KindAuth
	KindValidation
	KindConflict
	KindRateLimited
	KindServer
	KindTransport
	KindConfig
)

var (
	// ErrNotFound signals a missing resource (HTTP 404).
	ErrNotFound = errors.New("not found")
	// ErrAuth signals an authentication or authorization failure (HTTP 401/403).
	ErrAuth = errors.New("authentication failed")
	// ErrValidation signals rejected input, local or remote (HTTP 400/422).
	ErrValidation = errors.New("validation failed")
	// ErrConflict signals a resource conflict (HTTP 409).
	ErrConflict = errors.New("conflict")
	// ErrRateLimited signals a rate limit hit (HTTP 429).
	ErrRateLimited = errors.New("rate limited")
	// ErrServer signals a remote server failure (HTTP 5xx).
	ErrServer = errors.New("server error")
	// ErrTransport signals a network or timeout failure before any HTTP status.
	ErrTransport = errors.New("transport error")
	// ErrConfig signals invalid client construction.
	ErrConfig = errors.New("invalid configuration")
)

// Error is a classified API error. It unwraps to the sentinel for its kind,
// so callers check with errors.Is while the struct keeps the server detail.
type Error struct {
	Kind    Kind
	Status  int               // HTTP status, 0 for local and transport errors
	Message string            // server detail or a synthesized message
	Fields  map[string]string // structured validation detail, when available
	// RetryAfter carries the server's Retry-After hint for rate limits.
	RetryAfter time.Duration
	// Cause is the underlying transport error, when one exists.
	Cause error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.sentinel().Error(), e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.sentinel().Error(), e.Message)
}

// Unwrap exposes the kind sentinel and the transport cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.sentinel(), e.Cause}
	}
	return []error{e.sentinel()}
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindAuth:
		return ErrAuth
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	case KindTransport:
		return ErrTransport
	case KindConfig:
		return ErrConfig
	default:
		return ErrServer
	}
}

// Validation creates a local validation error. It carries no status code
// because no network call was made.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf creates a local validation error with formatting.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// NotFound creates a local not-found error, used when a client-side scan
// (such as lookup by collection id) finds no match.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// Config creates a client construction error.
func Config(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

// Transport wraps a network or timeout failure.
func Transport(cause error) *Error {
	return &Error{Kind: KindTransport, Message: cause.Error(), Cause: cause}
}

// IsNotFound reports whether err is a confirmed-absence error. The dispatcher
// uses this to suppress the legacy fallback.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// errorBody is the JSON error envelope ChromaDB returns alongside non-2xx
// statuses. detail is usually a string; validation errors may ship a list of
// per-field objects instead, which we flatten into Fields.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

type fieldDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// FromResponse maps an HTTP status and response body to a typed error.
// Classification is by status code; the message prefers the body's detail
// field, then raw body text, then a generic fallback.
func FromResponse(status int, body []byte, retryAfter time.Duration) *Error {
	e := &Error{Status: status, RetryAfter: retryAfter}

	switch {
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	case status == http.StatusConflict:
		e.Kind = KindConflict
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindServer
	}

	e.Message, e.Fields = extractDetail(body)
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

func extractDetail(body []byte) (string, map[string]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", nil
	}

	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil {
		return trimmed, nil
	}

	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s, nil
		}
		var details []fieldDetail
		if err := json.Unmarshal(envelope.Detail, &details); err == nil && len(details) > 0 {
			fields := make(map[string]string, len(details))
			parts := make([]string, 0, len(details))
			for _, d := range details {
				loc := locString(d.Loc)
				fields[loc] = d.Msg
				parts = append(parts, loc+": "+d.Msg)
			}
			return strings.Join(parts, "; "), fields
		}
	}
	if envelope.Error != "" {
		return envelope.Error, nil
	}
	return trimmed, nil
}

func locString(loc []any) string {
	if len(loc) == 0 {
		return "body"
	}
	parts := make([]string, len(loc))
	for i, p := range loc {
		parts[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(parts, ".")
}
