package chromalens

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAddThenQuery(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)
	ctx := context.Background()

	coll, err := c.Collections().Create(ctx, CreateCollectionParams{Name: "docs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	items := c.Items(coll.ID)
	err = items.Add(ctx, Batch{
		IDs: []string{"a", "b", "c"},
		Embeddings: [][]float32{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
		},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	res, err := items.Query(ctx, QueryParams{
		Embeddings: [][]float32{{1, 0, 0, 0}},
		NResults:   2,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.IDs) != 1 || len(res.IDs[0]) != 2 {
		t.Fatalf("expected exactly 2 ids for 1 query, got %v", res.IDs)
	}
	if res.IDs[0][0] != "a" || res.Distances[0][0] != 0 {
		t.Fatalf("expected an exact match on a, got ids=%v distances=%v", res.IDs[0], res.Distances[0])
	}
	if res.Distances[0][1] < res.Distances[0][0] {
		t.Fatal("distances must be ascending")
	}
}

func TestTenantCreateThenList(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)
	ctx := context.Background()

	if _, err := c.Tenants().Create(ctx, "acme"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tenants, err := c.Tenants().List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	seen := map[string]bool{}
	for _, tenant := range tenants {
		seen[tenant.Name] = true
	}
	if !seen[DefaultTenant] || !seen["acme"] {
		t.Fatalf("expected default tenant and acme, got %+v", tenants)
	}
}

func TestDeleteByFilter(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)
	ctx := context.Background()

	coll, err := c.Collections().Create(ctx, CreateCollectionParams{Name: "docs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	items := c.Items(coll.ID)
	err = items.Add(ctx, Batch{
		IDs:        []string{"a", "b", "c"},
		Embeddings: [][]float32{{1}, {2}, {3}},
		Metadatas: []map[string]any{
			{"category": "x"},
			{"category": "y"},
			{"category": "x"},
		},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	err = items.Delete(ctx, DeleteParams{
		Where: Where{"category": map[string]any{"$eq": "x"}},
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := items.Get(ctx, GetParams{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.IDs) != 1 || got.IDs[0] != "b" {
		t.Fatalf("expected only b to survive, got %v", got.IDs)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)
	ctx := context.Background()

	coll, err := c.Collections().Create(ctx, CreateCollectionParams{Name: "docs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	items := c.Items(coll.ID)

	batch := Batch{
		IDs:        []string{"a", "b"},
		Embeddings: [][]float32{{1, 2}, {3, 4}},
		Metadatas:  []map[string]any{{"v": 1}, {"v": 2}},
	}
	for range 2 {
		if err := items.Upsert(ctx, batch); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	n, err := items.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Count = (%d, %v), want 2", n, err)
	}
	got, err := items.Get(ctx, GetParams{IDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.IDs) != 2 {
		t.Fatalf("expected both items, got %v", got.IDs)
	}
}

func TestLegacyOnlyServer_FallsBack(t *testing.T) {
	f := newFakeServer()
	f.legacyOnly = true
	c := f.client(t)
	ctx := context.Background()

	coll, err := c.Collections().Create(ctx, CreateCollectionParams{Name: "docs"})
	if err != nil {
		t.Fatalf("Create via legacy: %v", err)
	}
	items := c.Items(coll.ID)
	if err := items.Add(ctx, Batch{IDs: []string{"a"}, Embeddings: [][]float32{{1, 2}}}); err != nil {
		t.Fatalf("Add via legacy: %v", err)
	}
	n, err := items.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count via legacy = (%d, %v)", n, err)
	}

	// Every operation shows the modern attempt first, then the legacy retry.
	var sawPair bool
	log := f.requestLog()
	for i := 1; i < len(log); i++ {
		if strings.Contains(log[i-1], "/api/v2/") && strings.Contains(log[i], "/api/v1/") {
			sawPair = true
			break
		}
	}
	if !sawPair {
		t.Fatalf("expected modern-then-legacy request pairs, got %v", log)
	}
}

func TestModernNotFoundIsAuthoritative(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)
	ctx := context.Background()

	before := len(f.requestLog())
	_, err := c.Collections().Get(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	log := f.requestLog()[before:]
	if len(log) != 1 || !strings.Contains(log[0], "/api/v2/") {
		t.Fatalf("not-found must not probe the legacy api, got %v", log)
	}
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)
	ctx := context.Background()

	first, err := c.Collections().Create(ctx, CreateCollectionParams{Name: "docs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = c.Collections().Create(ctx, CreateCollectionParams{Name: "docs"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	again, err := c.Collections().Create(ctx, CreateCollectionParams{Name: "docs", GetOrCreate: true})
	if err != nil {
		t.Fatalf("Create get_or_create: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected the existing collection, got %q vs %q", again.ID, first.ID)
	}
}

func TestCollectionGetByID_EndToEnd(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)
	ctx := context.Background()

	coll, err := c.Collections().Create(ctx, CreateCollectionParams{Name: "docs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := c.Collections().GetByID(ctx, coll.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "docs" {
		t.Fatalf("unexpected collection %+v", got)
	}
	if _, err := c.Collections().GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
