package chromalens

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func TestNew_ProbesHeartbeat(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)

	log := f.requestLog()
	if len(log) == 0 || !strings.HasSuffix(log[0], "/api/v2/heartbeat") {
		t.Fatalf("expected heartbeat probe first, got %v", log)
	}

	ns, err := c.Heartbeat(context.Background())
	if err != nil || ns == 0 {
		t.Fatalf("Heartbeat = (%d, %v)", ns, err)
	}
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New(context.Background(), WithHost("localhost"), WithPort(1))
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestNew_WithoutConnectionCheck(t *testing.T) {
	c, err := New(context.Background(),
		WithHost("localhost"), WithPort(1),
		WithoutConnectionCheck(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c == nil {
		t.Fatal("expected a client")
	}
}

func TestNew_InvalidPort(t *testing.T) {
	_, err := New(context.Background(), WithPort(70000), WithoutConnectionCheck())
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestNew_APIKeyFromEnv(t *testing.T) {
	t.Setenv("CHROMALENS_API_KEY", "sekret")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]int64{"nanosecond heartbeat": 1})
	}))
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	if _, err := New(context.Background(), WithHost(u.Hostname()), WithPort(port)); err != nil {
		t.Fatalf("New: %v", err)
	}
	if gotAuth != "Bearer sekret" {
		t.Fatalf("Authorization = %q, want bearer token from environment", gotAuth)
	}
}

func TestVersionAndPreFlight(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)

	v, err := c.Version(context.Background())
	if err != nil || v != "0.4.24" {
		t.Fatalf("Version = (%q, %v)", v, err)
	}

	checks, err := c.PreFlightChecks(context.Background())
	if err != nil {
		t.Fatalf("PreFlightChecks: %v", err)
	}
	if _, ok := checks["max_batch_size"]; !ok {
		t.Fatalf("unexpected checks %v", checks)
	}
}

func TestReset(t *testing.T) {
	f := newFakeServer()
	c := f.client(t)

	if _, err := c.Collections().Create(context.Background(), CreateCollectionParams{Name: "doomed"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ok, err := c.Reset(context.Background())
	if err != nil || !ok {
		t.Fatalf("Reset = (%t, %v)", ok, err)
	}
	n, err := c.Collections().Count(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Count after reset = (%d, %v)", n, err)
	}
}
