package ops

import (
	"regexp"

	"github.com/chromalens/chromalens-go/internal/apierr"
)

const maxNameLength = 64

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// validateName checks the shared naming rules for tenants, databases and
// collections. kind names the offending field in the returned error.
func validateName(kind, name string) error {
	if name == "" {
		return apierr.Validationf("%s name must not be empty", kind)
	}
	if len(name) > maxNameLength {
		return apierr.Validationf("%s name must be at most %d characters, got %d", kind, maxNameLength, len(name))
	}
	if !namePattern.MatchString(name) {
		return apierr.Validationf("%s name %q must start with an alphanumeric character and contain only alphanumerics, dots, underscores and hyphens", kind, name)
	}
	return nil
}

func validateID(kind, id string) error {
	if id == "" {
		return apierr.Validationf("%s id must not be empty", kind)
	}
	return nil
}

// validateEmbeddings checks that every embedding is non-empty and that all
// embeddings share a single dimensionality.
func validateEmbeddings(embeddings [][]float32) error {
	if len(embeddings) == 0 {
		return apierr.Validation("embeddings must not be empty")
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return apierr.Validation("embeddings must not contain empty vectors")
	}
	for i, e := range embeddings {
		if len(e) != dim {
			return apierr.Validationf("embeddings must share one dimensionality: embedding 0 has %d values, embedding %d has %d", dim, i, len(e))
		}
	}
	return nil
}

// validateParallel checks that an optional parallel slice either is absent or
// matches the batch length.
func validateParallel(field string, got, want int) error {
	if got != 0 && got != want {
		return apierr.Validationf("%s length %d does not match batch length %d", field, got, want)
	}
	return nil
}

func validateUniqueIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return apierr.Validation("ids must not contain empty strings")
		}
		if _, dup := seen[id]; dup {
			return apierr.Validationf("ids must be unique, %q appears more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
