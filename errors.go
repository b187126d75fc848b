package chromalens

import "github.com/chromalens/chromalens-go/internal/apierr"

// Sentinel errors re-exported from the error taxonomy.
// Use errors.Is() to check.
var (
	ErrNotFound    = apierr.ErrNotFound
	ErrAuth        = apierr.ErrAuth
	ErrValidation  = apierr.ErrValidation
	ErrConflict    = apierr.ErrConflict
	ErrRateLimited = apierr.ErrRateLimited
	ErrServer      = apierr.ErrServer
	ErrTransport   = apierr.ErrTransport
	ErrConfig      = apierr.ErrConfig
)

// Error is the structured error returned by every failed operation. It
// unwraps to exactly one of the sentinel errors above.
type Error = apierr.Error
