package chromalens

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeServer is an in-memory stand-in for a Chroma server. It serves the
// modern tenant/database-scoped paths and the legacy flat paths from the
// same store, and can be switched to legacy-only mode to exercise the
// fallback path.
type fakeServer struct {
	mu         sync.Mutex
	legacyOnly bool
	requests   []string

	tenants     map[string]bool
	databases   map[string]bool
	collections map[string]*fakeCollection
	nextID      int
}

type fakeCollection struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`

	order []string
	items map[string]fakeItem
}

type fakeItem struct {
	embedding []float32
	metadata  map[string]any
	document  string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		tenants:     map[string]bool{DefaultTenant: true},
		databases:   map[string]bool{DefaultDatabase: true},
		collections: map[string]*fakeCollection{},
	}
}

func (f *fakeServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

// client builds a Client pointed at the fake.
func (f *fakeServer) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	srv := f.start(t)
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())
	all := append([]Option{WithHost(u.Hostname()), WithPort(port)}, opts...)
	c, err := New(t.Context(), all...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func (f *fakeServer) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	var rest string
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/v2/"):
		if f.legacyOnly {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "v2 api unsupported"})
			return
		}
		rest = strings.TrimPrefix(r.URL.Path, "/api/v2/")
		// Strip the tenant/database scope from scoped paths.
		if strings.HasPrefix(rest, "tenants/") {
			parts := strings.SplitN(rest, "/", 5)
			if len(parts) >= 4 && parts[2] == "databases" {
				if len(parts) == 4 {
					rest = "databases/" + parts[3]
				} else {
					rest = parts[4]
				}
			} else if len(parts) == 2 {
				rest = "tenant/" + parts[1]
			}
		}
	case strings.HasPrefix(r.URL.Path, "/api/v1/"):
		rest = strings.TrimPrefix(r.URL.Path, "/api/v1/")
		if strings.HasPrefix(rest, "tenants/") {
			rest = "tenant/" + strings.TrimPrefix(rest, "tenants/")
		}
	default:
		http.NotFound(w, r)
		return
	}

	f.route(w, r, rest)
}

func (f *fakeServer) route(w http.ResponseWriter, r *http.Request, path string) {
	switch {
	case path == "heartbeat":
		writeJSON(w, http.StatusOK, map[string]int64{"nanosecond heartbeat": 1730000000000000000})
	case path == "version":
		writeJSON(w, http.StatusOK, "0.4.24")
	case path == "reset":
		f.tenants = map[string]bool{DefaultTenant: true}
		f.databases = map[string]bool{DefaultDatabase: true}
		f.collections = map[string]*fakeCollection{}
		writeJSON(w, http.StatusOK, true)
	case path == "pre-flight-checks":
		writeJSON(w, http.StatusOK, map[string]any{"max_batch_size": 41666})
	case path == "tenants" && r.Method == http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.tenants[body.Name] = true
		writeJSON(w, http.StatusOK, map[string]any{})
	case path == "tenants" && r.Method == http.MethodGet:
		names := make([]map[string]string, 0, len(f.tenants))
		for name := range f.tenants {
			names = append(names, map[string]string{"name": name})
		}
		writeJSON(w, http.StatusOK, names)
	case strings.HasPrefix(path, "tenant/"):
		writeJSON(w, http.StatusOK, map[string]string{"name": strings.TrimPrefix(path, "tenant/")})
	case path == "databases" && r.Method == http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.databases[body.Name] = true
		writeJSON(w, http.StatusOK, map[string]any{})
	case path == "databases" && r.Method == http.MethodGet:
		names := make([]map[string]string, 0, len(f.databases))
		for name := range f.databases {
			names = append(names, map[string]string{"name": name})
		}
		writeJSON(w, http.StatusOK, names)
	case strings.HasPrefix(path, "databases/"):
		name := strings.TrimPrefix(path, "databases/")
		if !f.databases[name] {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("database %s not found", name)})
			return
		}
		if r.Method == http.MethodDelete {
			delete(f.databases, name)
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"name": name})
	case path == "collections" && r.Method == http.MethodPost:
		f.createCollection(w, r)
	case path == "collections" && r.Method == http.MethodGet:
		out := make([]*fakeCollection, 0, len(f.collections))
		for _, coll := range f.collections {
			out = append(out, coll)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		writeJSON(w, http.StatusOK, out)
	case path == "collections_count" || path == "count_collections":
		writeJSON(w, http.StatusOK, len(f.collections))
	case strings.HasPrefix(path, "collections/"):
		f.routeCollection(w, r, strings.TrimPrefix(path, "collections/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such route: " + path})
	}
}

func (f *fakeServer) createCollection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string         `json:"name"`
		Metadata    map[string]any `json:"metadata"`
		GetOrCreate bool           `json:"get_or_create"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	if existing, ok := f.collections[body.Name]; ok {
		if body.GetOrCreate {
			writeJSON(w, http.StatusOK, existing)
			return
		}
		writeJSON(w, http.StatusConflict, map[string]string{"error": "collection already exists"})
		return
	}
	f.nextID++
	coll := &fakeCollection{
		ID:       fmt.Sprintf("coll-%d", f.nextID),
		Name:     body.Name,
		Metadata: body.Metadata,
		items:    map[string]fakeItem{},
	}
	f.collections[body.Name] = coll
	writeJSON(w, http.StatusOK, coll)
}

func (f *fakeServer) routeCollection(w http.ResponseWriter, r *http.Request, path string) {
	name, action, _ := strings.Cut(path, "/")
	if action == "" {
		coll, ok := f.collections[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("collection %s not found", name)})
			return
		}
		if r.Method == http.MethodDelete {
			delete(f.collections, name)
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, coll)
		return
	}

	// Item actions address the collection by id.
	var coll *fakeCollection
	for _, c := range f.collections {
		if c.ID == name {
			coll = c
			break
		}
	}
	if coll == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection id not found"})
		return
	}

	var body struct {
		IDs             []string         `json:"ids"`
		Embeddings      [][]float32      `json:"embeddings"`
		Metadatas       []map[string]any `json:"metadatas"`
		Documents       []string         `json:"documents"`
		Where           map[string]any   `json:"where"`
		QueryEmbeddings [][]float32      `json:"query_embeddings"`
		NResults        int              `json:"n_results"`
		Limit           int              `json:"limit"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	switch action {
	case "add", "upsert":
		for i := range body.Embeddings {
			id := fmt.Sprintf("gen-%d", len(coll.order)+1)
			if i < len(body.IDs) {
				id = body.IDs[i]
			}
			item := fakeItem{embedding: body.Embeddings[i]}
			if i < len(body.Metadatas) {
				item.metadata = body.Metadatas[i]
			}
			if i < len(body.Documents) {
				item.document = body.Documents[i]
			}
			if _, exists := coll.items[id]; !exists {
				coll.order = append(coll.order, id)
			} else if action == "add" {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "id already exists: " + id})
				return
			}
			coll.items[id] = item
		}
		writeJSON(w, http.StatusOK, true)
	case "update":
		for i, id := range body.IDs {
			item, ok := coll.items[id]
			if !ok {
				continue
			}
			if i < len(body.Embeddings) {
				item.embedding = body.Embeddings[i]
			}
			if i < len(body.Metadatas) {
				item.metadata = body.Metadatas[i]
			}
			if i < len(body.Documents) {
				item.document = body.Documents[i]
			}
			coll.items[id] = item
		}
		writeJSON(w, http.StatusOK, true)
	case "get":
		res := struct {
			IDs        []string         `json:"ids"`
			Embeddings [][]float32      `json:"embeddings"`
			Metadatas  []map[string]any `json:"metadatas"`
			Documents  []string         `json:"documents"`
		}{IDs: []string{}}
		want := map[string]bool{}
		for _, id := range body.IDs {
			want[id] = true
		}
		for _, id := range coll.order {
			if len(want) > 0 && !want[id] {
				continue
			}
			item := coll.items[id]
			if !matchWhere(item.metadata, body.Where) {
				continue
			}
			res.IDs = append(res.IDs, id)
			res.Embeddings = append(res.Embeddings, item.embedding)
			res.Metadatas = append(res.Metadatas, item.metadata)
			res.Documents = append(res.Documents, item.document)
			if body.Limit > 0 && len(res.IDs) == body.Limit {
				break
			}
		}
		writeJSON(w, http.StatusOK, res)
	case "delete":
		var kept []string
		want := map[string]bool{}
		for _, id := range body.IDs {
			want[id] = true
		}
		for _, id := range coll.order {
			item := coll.items[id]
			selected := want[id] || (len(want) == 0 && matchWhere(item.metadata, body.Where))
			if selected {
				delete(coll.items, id)
				continue
			}
			kept = append(kept, id)
		}
		coll.order = kept
		writeJSON(w, http.StatusOK, true)
	case "count":
		writeJSON(w, http.StatusOK, len(coll.items))
	case "query":
		type hit struct {
			id   string
			dist float64
		}
		res := struct {
			IDs       [][]string  `json:"ids"`
			Distances [][]float64 `json:"distances"`
		}{}
		n := body.NResults
		if n <= 0 {
			n = 10
		}
		for _, q := range body.QueryEmbeddings {
			var hits []hit
			for _, id := range coll.order {
				item := coll.items[id]
				if !matchWhere(item.metadata, body.Where) {
					continue
				}
				hits = append(hits, hit{id: id, dist: l2(q, item.embedding)})
			}
			sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
			if len(hits) > n {
				hits = hits[:n]
			}
			ids := make([]string, len(hits))
			dists := make([]float64, len(hits))
			for i, h := range hits {
				ids[i] = h.id
				dists[i] = h.dist
			}
			res.IDs = append(res.IDs, ids)
			res.Distances = append(res.Distances, dists)
		}
		writeJSON(w, http.StatusOK, res)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such action: " + action})
	}
}

// matchWhere evaluates the subset of the filter grammar the tests use:
// implicit equality, $eq/$ne, and $and/$or.
func matchWhere(meta map[string]any, where map[string]any) bool {
	if len(where) == 0 {
		return true
	}
	for key, value := range where {
		switch key {
		case "$and", "$or":
			clauses, _ := value.([]any)
			matched := key == "$and"
			for _, clause := range clauses {
				m, _ := clause.(map[string]any)
				ok := matchWhere(meta, m)
				if key == "$and" {
					matched = matched && ok
				} else {
					matched = matched || ok
				}
			}
			if !matched {
				return false
			}
		default:
			got, ok := meta[key]
			if !ok {
				return false
			}
			if operand, isOp := value.(map[string]any); isOp {
				for op, v := range operand {
					switch op {
					case "$eq":
						if fmt.Sprint(got) != fmt.Sprint(v) {
							return false
						}
					case "$ne":
						if fmt.Sprint(got) == fmt.Sprint(v) {
							return false
						}
					}
				}
				continue
			}
			if fmt.Sprint(got) != fmt.Sprint(value) {
				return false
			}
		}
	}
	return true
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		if i >= len(b) {
			break
		}
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
