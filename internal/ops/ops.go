// Package ops builds and validates the per-resource API operations. Each
// operation prepares both request shapes — the modern tenant/database-scoped
// paths and the legacy query-parameter paths — and hands them to the
// dispatcher, which owns the fallback decision. Input invariants are checked
// here, before any network call.
package ops

import (
	"context"
	"net/url"
	"strconv"

	"github.com/chromalens/chromalens-go/internal/rest"
)

// Well-known defaults used when the caller configures nothing.
const (
	DefaultTenant   = "default_tenant"
	DefaultDatabase = "default_database"
)

// dispatcher is the consumer interface over rest.Dispatcher.
type dispatcher interface {
	Do(ctx context.Context, op string, modern rest.Request, legacy *rest.Request) ([]byte, error)
	JSON(ctx context.Context, op string, modern rest.Request, legacy *rest.Request, out any) error
}

// Defaults is the immutable request context shared by all operations.
// Individual calls may override tenant/database through a Scope without
// mutating these values.
type Defaults struct {
	Tenant   string
	Database string
}

// Scope carries per-call tenant/database overrides. Zero values fall through
// to the defaults.
type Scope struct {
	Tenant   string
	Database string
}

func (d Defaults) resolve(s Scope) (string, string) {
	tenant := s.Tenant
	if tenant == "" {
		tenant = d.Tenant
	}
	if tenant == "" {
		tenant = DefaultTenant
	}
	database := s.Database
	if database == "" {
		database = d.Database
	}
	if database == "" {
		database = DefaultDatabase
	}
	return tenant, database
}

// Path fragments shared across resources.
func tenantPath(tenant string) string {
	return "tenants/" + url.PathEscape(tenant)
}

func databasePath(tenant, database string) string {
	return tenantPath(tenant) + "/databases/" + url.PathEscape(database)
}

func collectionsPath(tenant, database string) string {
	return databasePath(tenant, database) + "/collections"
}

func collectionPath(tenant, database, collectionID string) string {
	return collectionsPath(tenant, database) + "/" + url.PathEscape(collectionID)
}

// legacyScopeQuery builds the v1 tenant/database query parameters.
func legacyScopeQuery(tenant, database string) url.Values {
	q := url.Values{}
	q.Set("tenant", tenant)
	if database != "" {
		q.Set("database", database)
	}
	return q
}

func pageQuery(q url.Values, limit, offset int) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}
