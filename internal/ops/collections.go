package ops

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chromalens/chromalens-go/internal/apierr"
	"github.com/chromalens/chromalens-go/internal/rest"
)

// Collections implements collection lifecycle operations within a database.
type Collections struct {
	d        dispatcher
	defaults Defaults
}

func NewCollections(d dispatcher, defaults Defaults) *Collections {
	return &Collections{d: d, defaults: defaults}
}

// CreateParams describes a new collection. Metadata and Dimension are
// optional; GetOrCreate turns an existing collection with the same name into
// a success instead of a conflict.
type CreateParams struct {
	Name        string
	Metadata    map[string]any
	Dimension   int
	GetOrCreate bool
}

func (c *Collections) Create(ctx context.Context, p CreateParams, scope Scope) (Collection, error) {
	if err := validateName("collection", p.Name); err != nil {
		return Collection{}, err
	}
	if p.Dimension < 0 {
		return Collection{}, apierr.Validationf("dimension must not be negative, got %d", p.Dimension)
	}
	tenant, database := c.defaults.resolve(scope)
	body := map[string]any{
		"name":          p.Name,
		"get_or_create": p.GetOrCreate,
	}
	if p.Metadata != nil {
		body["metadata"] = p.Metadata
	}
	if p.Dimension > 0 {
		body["dimension"] = p.Dimension
	}
	var out Collection
	modern := rest.Request{
		Method: http.MethodPost, Version: rest.V2,
		Path: collectionsPath(tenant, database),
		Body: body,
	}
	legacy := &rest.Request{
		Method: http.MethodPost, Version: rest.V1,
		Path:  "collections",
		Query: legacyScopeQuery(tenant, database),
		Body:  body,
	}
	if err := c.d.JSON(ctx, "collection_create", modern, legacy, &out); err != nil {
		return Collection{}, err
	}
	c.fillScope(&out, tenant, database)
	return out, nil
}

// Get resolves a collection by name.
func (c *Collections) Get(ctx context.Context, name string, scope Scope) (Collection, error) {
	if err := validateName("collection", name); err != nil {
		return Collection{}, err
	}
	tenant, database := c.defaults.resolve(scope)
	var out Collection
	modern := rest.Request{
		Method: http.MethodGet, Version: rest.V2,
		Path: collectionPath(tenant, database, name),
	}
	legacy := &rest.Request{
		Method: http.MethodGet, Version: rest.V1,
		Path:  "collections/" + name,
		Query: legacyScopeQuery(tenant, database),
	}
	if err := c.d.JSON(ctx, "collection_get", modern, legacy, &out); err != nil {
		return Collection{}, err
	}
	c.fillScope(&out, tenant, database)
	return out, nil
}

// GetByID resolves a collection by its server-assigned id. Neither API
// dialect exposes a direct lookup, so this lists the database's collections
// and scans for the id.
func (c *Collections) GetByID(ctx context.Context, id string, scope Scope) (Collection, error) {
	if err := validateID("collection", id); err != nil {
		return Collection{}, err
	}
	all, err := c.List(ctx, 0, 0, scope)
	if err != nil {
		return Collection{}, err
	}
	for _, coll := range all {
		if coll.ID == id {
			return coll, nil
		}
	}
	return Collection{}, apierr.NotFound(fmt.Sprintf("collection with id %q not found", id))
}

func (c *Collections) List(ctx context.Context, limit, offset int, scope Scope) ([]Collection, error) {
	tenant, database := c.defaults.resolve(scope)
	var out []Collection
	modern := rest.Request{
		Method: http.MethodGet, Version: rest.V2,
		Path:  collectionsPath(tenant, database),
		Query: pageQuery(nil, limit, offset),
	}
	legacy := &rest.Request{
		Method: http.MethodGet, Version: rest.V1,
		Path:  "collections",
		Query: pageQuery(legacyScopeQuery(tenant, database), limit, offset),
	}
	if err := c.d.JSON(ctx, "collection_list", modern, legacy, &out); err != nil {
		return nil, err
	}
	for i := range out {
		c.fillScope(&out[i], tenant, database)
	}
	return out, nil
}

// Count returns the number of collections in the database. Servers without
// the dedicated count endpoint are handled by listing and counting.
func (c *Collections) Count(ctx context.Context, scope Scope) (int, error) {
	tenant, database := c.defaults.resolve(scope)
	var out int
	modern := rest.Request{
		Method: http.MethodGet, Version: rest.V2,
		Path: collectionsPath(tenant, database) + "_count",
	}
	legacy := &rest.Request{
		Method: http.MethodGet, Version: rest.V1,
		Path:  "count_collections",
		Query: legacyScopeQuery(tenant, database),
	}
	if err := c.d.JSON(ctx, "collection_count", modern, legacy, &out); err != nil {
		all, listErr := c.List(ctx, 0, 0, scope)
		if listErr != nil {
			return 0, err
		}
		return len(all), nil
	}
	return out, nil
}

// UpdateParams carries the mutable collection attributes. At least one must
// be set.
type UpdateParams struct {
	NewName     string
	NewMetadata map[string]any
}

// Update renames a collection or replaces its metadata. Only the modern API
// supports updates; there is no legacy fallback.
func (c *Collections) Update(ctx context.Context, id string, p UpdateParams, scope Scope) error {
	if err := validateID("collection", id); err != nil {
		return err
	}
	if p.NewName == "" && p.NewMetadata == nil {
		return apierr.Validation("update requires a new name or new metadata")
	}
	if p.NewName != "" {
		if err := validateName("collection", p.NewName); err != nil {
			return err
		}
	}
	tenant, database := c.defaults.resolve(scope)
	body := map[string]any{}
	if p.NewName != "" {
		body["new_name"] = p.NewName
	}
	if p.NewMetadata != nil {
		body["new_metadata"] = p.NewMetadata
	}
	modern := rest.Request{
		Method: http.MethodPut, Version: rest.V2,
		Path: collectionPath(tenant, database, id),
		Body: body,
	}
	_, err := c.d.Do(ctx, "collection_update", modern, nil)
	return err
}

func (c *Collections) Delete(ctx context.Context, name string, scope Scope) error {
	if err := validateName("collection", name); err != nil {
		return err
	}
	tenant, database := c.defaults.resolve(scope)
	modern := rest.Request{
		Method: http.MethodDelete, Version: rest.V2,
		Path: collectionPath(tenant, database, name),
	}
	legacy := &rest.Request{
		Method: http.MethodDelete, Version: rest.V1,
		Path:  "collections/" + name,
		Query: legacyScopeQuery(tenant, database),
	}
	_, err := c.d.Do(ctx, "collection_delete", modern, legacy)
	return err
}

func (c *Collections) fillScope(coll *Collection, tenant, database string) {
	if coll.Tenant == "" {
		coll.Tenant = tenant
	}
	if coll.Database == "" {
		coll.Database = database
	}
}
