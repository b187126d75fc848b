package chromalens

import (
	"context"
	"time"

	"github.com/chromalens/chromalens-go/internal/ops"
)

// DatabaseService manages databases within a tenant.
type DatabaseService struct {
	ops *ops.Databases
	obs *observer
}

// Create registers a new database in the default or overridden tenant.
func (s *DatabaseService) Create(ctx context.Context, name string, opts ...CallOption) (db Database, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database_create", start, err) }()

	out, err := s.ops.Create(ctx, name, scopeOf(opts))
	if err != nil {
		return Database{}, err
	}
	return fromOpsDatabase(out), nil
}

// Get fetches a database by name.
func (s *DatabaseService) Get(ctx context.Context, name string, opts ...CallOption) (db Database, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database_get", start, err) }()

	out, err := s.ops.Get(ctx, name, scopeOf(opts))
	if err != nil {
		return Database{}, err
	}
	return fromOpsDatabase(out), nil
}

// List returns the tenant's databases. Zero limit requests the server
// default page size.
func (s *DatabaseService) List(ctx context.Context, limit, offset int, opts ...CallOption) (dbs []Database, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database_list", start, err) }()

	out, err := s.ops.List(ctx, limit, offset, scopeOf(opts))
	if err != nil {
		return nil, err
	}
	dbs = make([]Database, len(out))
	for i, d := range out {
		dbs[i] = fromOpsDatabase(d)
	}
	return dbs, nil
}

// Delete removes a database and everything in it.
func (s *DatabaseService) Delete(ctx context.Context, name string, opts ...CallOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("database_delete", start, err) }()

	return s.ops.Delete(ctx, name, scopeOf(opts))
}

func fromOpsDatabase(d ops.Database) Database {
	return Database{ID: d.ID, Name: d.Name, Tenant: d.Tenant}
}
