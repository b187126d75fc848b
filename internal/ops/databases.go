package ops

import (
	"context"
	"net/http"

	"github.com/chromalens/chromalens-go/internal/rest"
)

// Databases implements database lifecycle operations within a tenant.
type Databases struct {
	d        dispatcher
	defaults Defaults
}

func NewDatabases(d dispatcher, defaults Defaults) *Databases {
	return &Databases{d: d, defaults: defaults}
}

func (db *Databases) Create(ctx context.Context, name string, scope Scope) (Database, error) {
	if err := validateName("database", name); err != nil {
		return Database{}, err
	}
	tenant, _ := db.defaults.resolve(scope)
	body := map[string]string{"name": name}
	modern := rest.Request{
		Method: http.MethodPost, Version: rest.V2,
		Path: tenantPath(tenant) + "/databases",
		Body: body,
	}
	legacy := &rest.Request{
		Method: http.MethodPost, Version: rest.V1,
		Path:  "databases",
		Query: legacyScopeQuery(tenant, ""),
		Body:  body,
	}
	if _, err := db.d.Do(ctx, "database_create", modern, legacy); err != nil {
		return Database{}, err
	}
	return Database{Name: name, Tenant: tenant}, nil
}

func (db *Databases) Get(ctx context.Context, name string, scope Scope) (Database, error) {
	if err := validateName("database", name); err != nil {
		return Database{}, err
	}
	tenant, _ := db.defaults.resolve(scope)
	var out Database
	modern := rest.Request{
		Method: http.MethodGet, Version: rest.V2,
		Path: databasePath(tenant, name),
	}
	legacy := &rest.Request{
		Method: http.MethodGet, Version: rest.V1,
		Path:  "databases/" + name,
		Query: legacyScopeQuery(tenant, ""),
	}
	if err := db.d.JSON(ctx, "database_get", modern, legacy, &out); err != nil {
		return Database{}, err
	}
	if out.Tenant == "" {
		out.Tenant = tenant
	}
	return out, nil
}

// List returns the tenant's databases. Pagination is optional; zero values
// request the server default page.
func (db *Databases) List(ctx context.Context, limit, offset int, scope Scope) ([]Database, error) {
	tenant, _ := db.defaults.resolve(scope)
	var out []Database
	modern := rest.Request{
		Method: http.MethodGet, Version: rest.V2,
		Path:  tenantPath(tenant) + "/databases",
		Query: pageQuery(nil, limit, offset),
	}
	legacy := &rest.Request{
		Method: http.MethodGet, Version: rest.V1,
		Path:  "databases",
		Query: pageQuery(legacyScopeQuery(tenant, ""), limit, offset),
	}
	if err := db.d.JSON(ctx, "database_list", modern, legacy, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *Databases) Delete(ctx context.Context, name string, scope Scope) error {
	if err := validateName("database", name); err != nil {
		return err
	}
	tenant, _ := db.defaults.resolve(scope)
	modern := rest.Request{
		Method: http.MethodDelete, Version: rest.V2,
		Path: databasePath(tenant, name),
	}
	legacy := &rest.Request{
		Method: http.MethodDelete, Version: rest.V1,
		Path:  "databases/" + name,
		Query: legacyScopeQuery(tenant, ""),
	}
	_, err := db.d.Do(ctx, "database_delete", modern, legacy)
	return err
}
