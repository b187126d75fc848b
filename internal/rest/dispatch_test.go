package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/chromalens/chromalens-go/internal/apierr"
)

// mockDoer records every request and answers from a scripted queue.
type mockDoer struct {
	calls   []Request
	results []result
}

type result struct {
	data []byte
	err  error
}

func (m *mockDoer) Do(_ context.Context, req Request) ([]byte, error) {
	m.calls = append(m.calls, req)
	if len(m.results) == 0 {
		return nil, errors.New("mockDoer: no scripted result")
	}
	r := m.results[0]
	m.results = m.results[1:]
	return r.data, r.err
}

func requests() (Request, Request) {
	modern := Request{Method: http.MethodGet, Version: V2, Path: "tenants/t/databases/d/collections"}
	legacy := Request{Method: http.MethodGet, Version: V1, Path: "collections"}
	return modern, legacy
}

func TestDispatcher_ModernSuccess_NoFallback(t *testing.T) {
	m := &mockDoer{results: []result{{data: []byte(`[]`)}}}
	d := NewDispatcher(m, nil)
	modern, legacy := requests()

	out, err := d.Do(context.Background(), "collection.list", modern, &legacy)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(out) != "[]" {
		t.Errorf("out = %q", out)
	}
	if len(m.calls) != 1 {
		t.Fatalf("call count = %d, want 1", len(m.calls))
	}
	if m.calls[0].Version != V2 {
		t.Errorf("first call version = %q, want v2", m.calls[0].Version)
	}
}

func TestDispatcher_NotFoundIsAuthoritative(t *testing.T) {
	notFound := apierr.FromResponse(404, []byte(`{"detail": "gone"}`), 0)
	m := &mockDoer{results: []result{{err: notFound}}}
	d := NewDispatcher(m, nil)
	modern, legacy := requests()

	_, err := d.Do(context.Background(), "collection.get", modern, &legacy)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("got %v, want not-found propagated unchanged", err)
	}
	if len(m.calls) != 1 {
		t.Fatalf("call count = %d, legacy must never be probed on not-found", len(m.calls))
	}
}

func TestDispatcher_ServerErrorFallsBackOnce(t *testing.T) {
	m := &mockDoer{results: []result{
		{err: apierr.FromResponse(500, nil, 0)},
		{data: []byte(`{"ok": true}`)},
	}}
	d := NewDispatcher(m, nil)
	modern, legacy := requests()

	out, err := d.Do(context.Background(), "collection.list", modern, &legacy)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(out) != `{"ok": true}` {
		t.Errorf("legacy result not returned unchanged: %q", out)
	}
	if len(m.calls) != 2 {
		t.Fatalf("call count = %d, want exactly 2", len(m.calls))
	}
	if m.calls[1].Version != V1 {
		t.Errorf("fallback version = %q, want v1", m.calls[1].Version)
	}
}

func TestDispatcher_TransportErrorFallsBackOnce(t *testing.T) {
	m := &mockDoer{results: []result{
		{err: apierr.Transport(errors.New("connection reset"))},
		{err: apierr.FromResponse(503, nil, 0)},
	}}
	d := NewDispatcher(m, nil)
	modern, legacy := requests()

	_, err := d.Do(context.Background(), "items.add", modern, &legacy)
	// The legacy attempt's own error is final, no further retries.
	if !errors.Is(err, apierr.ErrServer) {
		t.Fatalf("got %v, want the legacy attempt's server error", err)
	}
	if len(m.calls) != 2 {
		t.Fatalf("call count = %d, want exactly 2", len(m.calls))
	}
}

func TestDispatcher_LegacyNotFoundIsFinal(t *testing.T) {
	m := &mockDoer{results: []result{
		{err: apierr.FromResponse(500, nil, 0)},
		{err: apierr.FromResponse(404, nil, 0)},
	}}
	d := NewDispatcher(m, nil)
	modern, legacy := requests()

	_, err := d.Do(context.Background(), "tenant.get", modern, &legacy)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("got %v, want legacy not-found", err)
	}
	if len(m.calls) != 2 {
		t.Fatalf("call count = %d, want 2 (no repeat of either descriptor)", len(m.calls))
	}
}

func TestDispatcher_NilLegacyMeansModernOnly(t *testing.T) {
	m := &mockDoer{results: []result{{err: apierr.FromResponse(500, nil, 0)}}}
	d := NewDispatcher(m, nil)
	modern, _ := requests()

	_, err := d.Do(context.Background(), "collection.update", modern, nil)
	if !errors.Is(err, apierr.ErrServer) {
		t.Fatalf("got %v, want modern error", err)
	}
	if len(m.calls) != 1 {
		t.Fatalf("call count = %d, want 1", len(m.calls))
	}
}

func TestDispatcher_JSON(t *testing.T) {
	m := &mockDoer{results: []result{{data: []byte(`{"name": "acme"}`)}}}
	d := NewDispatcher(m, nil)
	modern, legacy := requests()

	var out struct {
		Name string `json:"name"`
	}
	if err := d.JSON(context.Background(), "tenant.get", modern, &legacy, &out); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if out.Name != "acme" {
		t.Errorf("decoded name = %q", out.Name)
	}
}
