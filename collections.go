package chromalens

import (
	"context"
	"time"

	"github.com/chromalens/chromalens-go/internal/ops"
)

// CollectionService manages collection lifecycle within a database.
type CollectionService struct {
	ops *ops.Collections
	obs *observer
}

// CreateCollectionParams describes a new collection.
type CreateCollectionParams struct {
	Name        string
	Metadata    map[string]any
	Dimension   int
	GetOrCreate bool
}

// Create makes a new collection. With GetOrCreate set, an existing
// collection of the same name is returned instead of a conflict error.
func (s *CollectionService) Create(ctx context.Context, p CreateCollectionParams, opts ...CallOption) (coll Collection, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection_create", start, err) }()

	out, err := s.ops.Create(ctx, ops.CreateParams{
		Name:        p.Name,
		Metadata:    p.Metadata,
		Dimension:   p.Dimension,
		GetOrCreate: p.GetOrCreate,
	}, scopeOf(opts))
	if err != nil {
		return Collection{}, err
	}
	return fromOpsCollection(out), nil
}

// Get fetches a collection by name.
func (s *CollectionService) Get(ctx context.Context, name string, opts ...CallOption) (coll Collection, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection_get", start, err) }()

	out, err := s.ops.Get(ctx, name, scopeOf(opts))
	if err != nil {
		return Collection{}, err
	}
	return fromOpsCollection(out), nil
}

// GetByID fetches a collection by its server-assigned id.
func (s *CollectionService) GetByID(ctx context.Context, id string, opts ...CallOption) (coll Collection, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection_get_by_id", start, err) }()

	out, err := s.ops.GetByID(ctx, id, scopeOf(opts))
	if err != nil {
		return Collection{}, err
	}
	return fromOpsCollection(out), nil
}

// List returns the database's collections. Zero limit requests the server
// default page size.
func (s *CollectionService) List(ctx context.Context, limit, offset int, opts ...CallOption) (colls []Collection, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection_list", start, err) }()

	out, err := s.ops.List(ctx, limit, offset, scopeOf(opts))
	if err != nil {
		return nil, err
	}
	colls = make([]Collection, len(out))
	for i, c := range out {
		colls[i] = fromOpsCollection(c)
	}
	return colls, nil
}

// Count returns the number of collections in the database.
func (s *CollectionService) Count(ctx context.Context, opts ...CallOption) (n int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection_count", start, err) }()

	return s.ops.Count(ctx, scopeOf(opts))
}

// UpdateCollectionParams carries the mutable collection attributes. At
// least one must be set.
type UpdateCollectionParams struct {
	NewName     string
	NewMetadata map[string]any
}

// Update renames a collection or replaces its metadata.
func (s *CollectionService) Update(ctx context.Context, id string, p UpdateCollectionParams, opts ...CallOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection_update", start, err) }()

	return s.ops.Update(ctx, id, ops.UpdateParams{
		NewName:     p.NewName,
		NewMetadata: p.NewMetadata,
	}, scopeOf(opts))
}

// Delete removes a collection and all its items.
func (s *CollectionService) Delete(ctx context.Context, name string, opts ...CallOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection_delete", start, err) }()

	return s.ops.Delete(ctx, name, scopeOf(opts))
}
