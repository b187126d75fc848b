package ops

import (
	"context"
	"net/http"

	"github.com/chromalens/chromalens-go/internal/apierr"
	"github.com/chromalens/chromalens-go/internal/rest"
)

// Items implements record-level operations on a single collection, addressed
// by its server-assigned id.
type Items struct {
	d        dispatcher
	defaults Defaults
}

func NewItems(d dispatcher, defaults Defaults) *Items {
	return &Items{d: d, defaults: defaults}
}

func (it *Items) requests(method, collectionID, action string, body any, scope Scope) (rest.Request, *rest.Request) {
	tenant, database := it.defaults.resolve(scope)
	modern := rest.Request{
		Method: method, Version: rest.V2,
		Path: collectionPath(tenant, database, collectionID) + "/" + action,
		Body: body,
	}
	legacy := &rest.Request{
		Method: method, Version: rest.V1,
		Path:  "collections/" + collectionID + "/" + action,
		Query: legacyScopeQuery(tenant, database),
		Body:  body,
	}
	return modern, legacy
}

// Add appends new records. Embeddings are mandatory and define the batch
// length; every other slice must either be absent or match it.
func (it *Items) Add(ctx context.Context, collectionID string, b Batch, scope Scope) error {
	if err := validateID("collection", collectionID); err != nil {
		return err
	}
	if err := validateWriteBatch(b); err != nil {
		return err
	}
	modern, legacy := it.requests(http.MethodPost, collectionID, "add", batchBody(b), scope)
	_, err := it.d.Do(ctx, "items_add", modern, legacy)
	return err
}

// Update patches existing records in place. IDs are mandatory and at least
// one other slice must be provided.
func (it *Items) Update(ctx context.Context, collectionID string, b Batch, scope Scope) error {
	if err := validateID("collection", collectionID); err != nil {
		return err
	}
	if len(b.IDs) == 0 {
		return apierr.Validation("update requires ids")
	}
	if err := validateUniqueIDs(b.IDs); err != nil {
		return err
	}
	if len(b.Embeddings) == 0 && len(b.Metadatas) == 0 && len(b.Documents) == 0 && len(b.URIs) == 0 {
		return apierr.Validation("update requires embeddings, metadatas, documents or uris")
	}
	n := len(b.IDs)
	if len(b.Embeddings) > 0 {
		if err := validateEmbeddings(b.Embeddings); err != nil {
			return err
		}
		if err := validateParallel("embeddings", len(b.Embeddings), n); err != nil {
			return err
		}
	}
	if err := validateParallel("metadatas", len(b.Metadatas), n); err != nil {
		return err
	}
	if err := validateParallel("documents", len(b.Documents), n); err != nil {
		return err
	}
	if err := validateParallel("uris", len(b.URIs), n); err != nil {
		return err
	}
	modern, legacy := it.requests(http.MethodPost, collectionID, "update", batchBody(b), scope)
	_, err := it.d.Do(ctx, "items_update", modern, legacy)
	return err
}

// Upsert inserts or replaces records. Both ids and embeddings are mandatory.
func (it *Items) Upsert(ctx context.Context, collectionID string, b Batch, scope Scope) error {
	if err := validateID("collection", collectionID); err != nil {
		return err
	}
	if len(b.IDs) == 0 {
		return apierr.Validation("upsert requires ids")
	}
	if err := validateWriteBatch(b); err != nil {
		return err
	}
	modern, legacy := it.requests(http.MethodPost, collectionID, "upsert", batchBody(b), scope)
	_, err := it.d.Do(ctx, "items_upsert", modern, legacy)
	return err
}

// GetParams selects records by id and/or filters. Zero Limit means the
// server default.
type GetParams struct {
	IDs           []string
	Where         map[string]any
	WhereDocument map[string]any
	Limit         int
	Offset        int
	Include       []string
}

func (it *Items) Get(ctx context.Context, collectionID string, p GetParams, scope Scope) (Page, error) {
	if err := validateID("collection", collectionID); err != nil {
		return Page{}, err
	}
	if err := ValidateWhere(p.Where); err != nil {
		return Page{}, err
	}
	if err := ValidateWhereDocument(p.WhereDocument); err != nil {
		return Page{}, err
	}
	if p.Limit < 0 {
		return Page{}, apierr.Validationf("limit must not be negative, got %d", p.Limit)
	}
	if p.Offset < 0 {
		return Page{}, apierr.Validationf("offset must not be negative, got %d", p.Offset)
	}
	body := map[string]any{}
	if len(p.IDs) > 0 {
		body["ids"] = p.IDs
	}
	if p.Where != nil {
		body["where"] = p.Where
	}
	if p.WhereDocument != nil {
		body["where_document"] = p.WhereDocument
	}
	if p.Limit > 0 {
		body["limit"] = p.Limit
	}
	if p.Offset > 0 {
		body["offset"] = p.Offset
	}
	if len(p.Include) > 0 {
		body["include"] = p.Include
	}
	var out Page
	modern, legacy := it.requests(http.MethodPost, collectionID, "get", body, scope)
	if err := it.d.JSON(ctx, "items_get", modern, legacy, &out); err != nil {
		return Page{}, err
	}
	return out, nil
}

// DeleteParams selects records for removal. At least one selector is
// required; a blanket delete must be spelled out via filters.
type DeleteParams struct {
	IDs           []string
	Where         map[string]any
	WhereDocument map[string]any
}

func (it *Items) Delete(ctx context.Context, collectionID string, p DeleteParams, scope Scope) error {
	if err := validateID("collection", collectionID); err != nil {
		return err
	}
	if len(p.IDs) == 0 && p.Where == nil && p.WhereDocument == nil {
		return apierr.Validation("delete requires ids, a where filter or a where_document filter")
	}
	if err := ValidateWhere(p.Where); err != nil {
		return err
	}
	if err := ValidateWhereDocument(p.WhereDocument); err != nil {
		return err
	}
	body := map[string]any{}
	if len(p.IDs) > 0 {
		body["ids"] = p.IDs
	}
	if p.Where != nil {
		body["where"] = p.Where
	}
	if p.WhereDocument != nil {
		body["where_document"] = p.WhereDocument
	}
	modern, legacy := it.requests(http.MethodPost, collectionID, "delete", body, scope)
	_, err := it.d.Do(ctx, "items_delete", modern, legacy)
	return err
}

// Count returns the number of records in the collection.
func (it *Items) Count(ctx context.Context, collectionID string, scope Scope) (int, error) {
	if err := validateID("collection", collectionID); err != nil {
		return 0, err
	}
	tenant, database := it.defaults.resolve(scope)
	var out int
	modern := rest.Request{
		Method: http.MethodGet, Version: rest.V2,
		Path: collectionPath(tenant, database, collectionID) + "/count",
	}
	legacy := &rest.Request{
		Method: http.MethodGet, Version: rest.V1,
		Path:  "collections/" + collectionID + "/count",
		Query: legacyScopeQuery(tenant, database),
	}
	if err := it.d.JSON(ctx, "items_count", modern, legacy, &out); err != nil {
		return 0, err
	}
	return out, nil
}

// validateWriteBatch checks the shared add/upsert invariants: embeddings
// define the batch length and every other provided slice must match it.
func validateWriteBatch(b Batch) error {
	if err := validateEmbeddings(b.Embeddings); err != nil {
		return err
	}
	n := len(b.Embeddings)
	if len(b.IDs) > 0 {
		if err := validateUniqueIDs(b.IDs); err != nil {
			return err
		}
		if err := validateParallel("ids", len(b.IDs), n); err != nil {
			return err
		}
	}
	if err := validateParallel("metadatas", len(b.Metadatas), n); err != nil {
		return err
	}
	if err := validateParallel("documents", len(b.Documents), n); err != nil {
		return err
	}
	return validateParallel("uris", len(b.URIs), n)
}

func batchBody(b Batch) map[string]any {
	body := map[string]any{
		"embeddings": b.Embeddings,
	}
	if len(b.IDs) > 0 {
		body["ids"] = b.IDs
	}
	if len(b.Metadatas) > 0 {
		body["metadatas"] = b.Metadatas
	}
	if len(b.Documents) > 0 {
		body["documents"] = b.Documents
	}
	if len(b.URIs) > 0 {
		body["uris"] = b.URIs
	}
	return body
}
