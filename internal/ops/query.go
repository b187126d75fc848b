package ops

import (
	"context"
	"net/http"

	"github.com/chromalens/chromalens-go/internal/apierr"
)

// DefaultNResults is used when a query does not ask for an explicit
// neighbour count.
const DefaultNResults = 10

// QueryParams describes a nearest-neighbour search over one collection.
type QueryParams struct {
	Embeddings    [][]float32
	NResults      int
	Where         map[string]any
	WhereDocument map[string]any
	Include       []string
}

// Query runs a nearest-neighbour search. Results come back grouped per query
// embedding, each group ordered by ascending distance.
func (it *Items) Query(ctx context.Context, collectionID string, p QueryParams, scope Scope) (QueryResult, error) {
	if err := validateID("collection", collectionID); err != nil {
		return QueryResult{}, err
	}
	if err := validateEmbeddings(p.Embeddings); err != nil {
		return QueryResult{}, err
	}
	if p.NResults < 0 {
		return QueryResult{}, apierr.Validationf("n_results must be positive, got %d", p.NResults)
	}
	if p.NResults == 0 {
		p.NResults = DefaultNResults
	}
	if err := ValidateWhere(p.Where); err != nil {
		return QueryResult{}, err
	}
	if err := ValidateWhereDocument(p.WhereDocument); err != nil {
		return QueryResult{}, err
	}
	body := map[string]any{
		"query_embeddings": p.Embeddings,
		"n_results":        p.NResults,
	}
	if p.Where != nil {
		body["where"] = p.Where
	}
	if p.WhereDocument != nil {
		body["where_document"] = p.WhereDocument
	}
	if len(p.Include) > 0 {
		body["include"] = p.Include
	}
	var out QueryResult
	modern, legacy := it.requests(http.MethodPost, collectionID, "query", body, scope)
	if err := it.d.JSON(ctx, "items_query", modern, legacy, &out); err != nil {
		return QueryResult{}, err
	}
	return out, nil
}
