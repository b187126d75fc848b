package chromalens

import (
	"context"
	"time"

	"github.com/chromalens/chromalens-go/internal/apierr"
	"github.com/chromalens/chromalens-go/internal/ops"
)

// ItemService reads, writes and queries the records of one collection.
type ItemService struct {
	collectionID string
	ops          *ops.Items
	embedder     Embedder
	obs          *observer
}

// Add appends new records. Embeddings are mandatory; ids may be omitted and
// are then assigned by the server.
func (s *ItemService) Add(ctx context.Context, b Batch, opts ...CallOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_add", start, err) }()

	return s.ops.Add(ctx, s.collectionID, toOpsBatch(b), scopeOf(opts))
}

// Update patches existing records in place. IDs are mandatory plus at least
// one of embeddings, metadatas, documents or uris.
func (s *ItemService) Update(ctx context.Context, b Batch, opts ...CallOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_update", start, err) }()

	return s.ops.Update(ctx, s.collectionID, toOpsBatch(b), scopeOf(opts))
}

// Upsert inserts or replaces records. Repeating an upsert with identical
// payloads leaves the collection in the same state.
func (s *ItemService) Upsert(ctx context.Context, b Batch, opts ...CallOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_upsert", start, err) }()

	return s.ops.Upsert(ctx, s.collectionID, toOpsBatch(b), scopeOf(opts))
}

// Get fetches records by ids and/or filters.
func (s *ItemService) Get(ctx context.Context, p GetParams, opts ...CallOption) (res GetResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_get", start, err) }()

	out, err := s.ops.Get(ctx, s.collectionID, ops.GetParams{
		IDs:           p.IDs,
		Where:         p.Where,
		WhereDocument: p.WhereDocument,
		Limit:         p.Limit,
		Offset:        p.Offset,
		Include:       includeStrings(p.Include),
	}, scopeOf(opts))
	if err != nil {
		return GetResult{}, err
	}
	return fromOpsPage(out), nil
}

// Delete removes records selected by ids and/or filters. At least one
// selector is required.
func (s *ItemService) Delete(ctx context.Context, p DeleteParams, opts ...CallOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_delete", start, err) }()

	return s.ops.Delete(ctx, s.collectionID, ops.DeleteParams{
		IDs:           p.IDs,
		Where:         p.Where,
		WhereDocument: p.WhereDocument,
	}, scopeOf(opts))
}

// Count returns the number of records in the collection.
func (s *ItemService) Count(ctx context.Context, opts ...CallOption) (n int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_count", start, err) }()

	return s.ops.Count(ctx, s.collectionID, scopeOf(opts))
}

// Query runs a nearest-neighbour search by raw embeddings. Matches come
// back grouped per query embedding, ordered by ascending distance.
func (s *ItemService) Query(ctx context.Context, p QueryParams, opts ...CallOption) (res QueryResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_query", start, err) }()

	out, err := s.ops.Query(ctx, s.collectionID, ops.QueryParams{
		Embeddings:    p.Embeddings,
		NResults:      p.NResults,
		Where:         p.Where,
		WhereDocument: p.WhereDocument,
		Include:       includeStrings(p.Include),
	}, scopeOf(opts))
	if err != nil {
		return QueryResult{}, err
	}
	return fromOpsQueryResult(out), nil
}

// QueryText embeds the given texts with the configured Embedder and runs a
// nearest-neighbour search with the resulting vectors.
func (s *ItemService) QueryText(ctx context.Context, p TextQueryParams, opts ...CallOption) (res QueryResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("items_query_text", start, err) }()

	if s.embedder == nil {
		return QueryResult{}, apierr.Validation("text queries require an embedder (use WithEmbedder)")
	}
	if len(p.Texts) == 0 {
		return QueryResult{}, apierr.Validation("texts must not be empty")
	}
	vecs, err := s.embedder.Embed(ctx, p.Texts)
	if err != nil {
		return QueryResult{}, err
	}
	out, err := s.ops.Query(ctx, s.collectionID, ops.QueryParams{
		Embeddings:    vecs,
		NResults:      p.NResults,
		Where:         p.Where,
		WhereDocument: p.WhereDocument,
		Include:       includeStrings(p.Include),
	}, scopeOf(opts))
	if err != nil {
		return QueryResult{}, err
	}
	return fromOpsQueryResult(out), nil
}

func toOpsBatch(b Batch) ops.Batch {
	return ops.Batch{
		IDs:        b.IDs,
		Embeddings: b.Embeddings,
		Metadatas:  b.Metadatas,
		Documents:  b.Documents,
		URIs:       b.URIs,
	}
}
