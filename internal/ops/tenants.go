package ops

import (
	"context"
	"net/http"

	"github.com/chromalens/chromalens-go/internal/rest"
)

// Tenants implements tenant lifecycle operations.
type Tenants struct {
	d dispatcher
}

func NewTenants(d dispatcher) *Tenants {
	return &Tenants{d: d}
}

func (t *Tenants) Create(ctx context.Context, name string) (Tenant, error) {
	if err := validateName("tenant", name); err != nil {
		return Tenant{}, err
	}
	body := map[string]string{"name": name}
	modern := rest.Request{Method: http.MethodPost, Version: rest.V2, Path: "tenants", Body: body}
	legacy := &rest.Request{Method: http.MethodPost, Version: rest.V1, Path: "tenants", Body: body}
	if _, err := t.d.Do(ctx, "tenant_create", modern, legacy); err != nil {
		return Tenant{}, err
	}
	return Tenant{Name: name}, nil
}

// List returns all tenants known to the server. Pagination is optional;
// zero values request the server default page.
func (t *Tenants) List(ctx context.Context, limit, offset int) ([]Tenant, error) {
	var out []Tenant
	modern := rest.Request{
		Method: http.MethodGet, Version: rest.V2,
		Path:  "tenants",
		Query: pageQuery(nil, limit, offset),
	}
	legacy := &rest.Request{
		Method: http.MethodGet, Version: rest.V1,
		Path:  "tenants",
		Query: pageQuery(nil, limit, offset),
	}
	if err := t.d.JSON(ctx, "tenant_list", modern, legacy, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tenants) Get(ctx context.Context, name string) (Tenant, error) {
	if err := validateName("tenant", name); err != nil {
		return Tenant{}, err
	}
	var out Tenant
	modern := rest.Request{Method: http.MethodGet, Version: rest.V2, Path: tenantPath(name)}
	legacy := &rest.Request{Method: http.MethodGet, Version: rest.V1, Path: tenantPath(name)}
	if err := t.d.JSON(ctx, "tenant_get", modern, legacy, &out); err != nil {
		return Tenant{}, err
	}
	if out.Name == "" {
		out.Name = name
	}
	return out, nil
}
