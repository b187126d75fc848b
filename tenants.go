package chromalens

import (
	"context"
	"time"

	"github.com/chromalens/chromalens-go/internal/ops"
)

// TenantService manages tenants.
type TenantService struct {
	ops *ops.Tenants
	obs *observer
}

// Create registers a new tenant.
func (s *TenantService) Create(ctx context.Context, name string) (t Tenant, err error) {
	start := time.Now()
	defer func() { s.obs.observe("tenant_create", start, err) }()

	out, err := s.ops.Create(ctx, name)
	if err != nil {
		return Tenant{}, err
	}
	return Tenant{Name: out.Name}, nil
}

// List returns all tenants known to the server. Zero limit and offset
// request the server default page.
func (s *TenantService) List(ctx context.Context, limit, offset int) (ts []Tenant, err error) {
	start := time.Now()
	defer func() { s.obs.observe("tenant_list", start, err) }()

	out, err := s.ops.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	ts = make([]Tenant, len(out))
	for i, t := range out {
		ts[i] = Tenant{Name: t.Name}
	}
	return ts, nil
}

// Get fetches a tenant by name.
func (s *TenantService) Get(ctx context.Context, name string) (t Tenant, err error) {
	start := time.Now()
	defer func() { s.obs.observe("tenant_get", start, err) }()

	out, err := s.ops.Get(ctx, name)
	if err != nil {
		return Tenant{}, err
	}
	return Tenant{Name: out.Name}, nil
}
