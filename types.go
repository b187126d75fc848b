package chromalens

import "github.com/chromalens/chromalens-go/internal/ops"

// Well-known scope names used when nothing else is configured.
const (
	DefaultTenant   = ops.DefaultTenant
	DefaultDatabase = ops.DefaultDatabase
)

// Tenant is a top-level isolation scope on the server.
type Tenant struct {
	Name string `json:"name"`
}

// Database groups collections within a tenant.
type Database struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Tenant string `json:"tenant,omitempty"`
}

// Collection is a named set of embedded items. Metadata and the index
// configuration are opaque server-side maps.
type Collection struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Tenant        string         `json:"tenant,omitempty"`
	Database      string         `json:"database,omitempty"`
	Dimension     int            `json:"dimension,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// Batch carries parallel slices for add, update and upsert. Every provided
// slice other than IDs must match the embedding count; IDs may be omitted on
// Add, in which case the server assigns them.
type Batch struct {
	IDs        []string
	Embeddings [][]float32
	Metadatas  []map[string]any
	Documents  []string
	URIs       []string
}

// Where is a metadata filter expression. Fields map to literals (implicit
// equality) or operator objects such as {"$gte": 0.5}; $and, $or and $not
// combine sub-filters.
type Where = map[string]any

// Include selects which payload fields the server returns alongside ids.
type Include string

const (
	IncludeEmbeddings Include = "embeddings"
	IncludeMetadatas  Include = "metadatas"
	IncludeDocuments  Include = "documents"
	IncludeURIs       Include = "uris"
	IncludeDistances  Include = "distances"
)

// GetParams selects items by id and/or filters.
type GetParams struct {
	IDs           []string
	Where         Where
	WhereDocument Where
	Limit         int
	Offset        int
	Include       []Include
}

// GetResult holds the selected items as parallel slices.
type GetResult struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings,omitempty"`
	Metadatas  []map[string]any `json:"metadatas,omitempty"`
	Documents  []string         `json:"documents,omitempty"`
	URIs       []string         `json:"uris,omitempty"`
}

// DeleteParams selects items for removal. At least one selector is required.
type DeleteParams struct {
	IDs           []string
	Where         Where
	WhereDocument Where
}

// QueryParams describes a nearest-neighbour search by raw embeddings.
type QueryParams struct {
	Embeddings    [][]float32
	NResults      int
	Where         Where
	WhereDocument Where
	Include       []Include
}

// TextQueryParams describes a nearest-neighbour search by text. The client's
// configured Embedder turns the texts into query embeddings.
type TextQueryParams struct {
	Texts         []string
	NResults      int
	Where         Where
	WhereDocument Where
	Include       []Include
}

// QueryResult groups matches per query embedding, ordered by ascending
// distance within each group.
type QueryResult struct {
	IDs        [][]string         `json:"ids"`
	Distances  [][]float64        `json:"distances,omitempty"`
	Embeddings [][][]float32      `json:"embeddings,omitempty"`
	Metadatas  [][]map[string]any `json:"metadatas,omitempty"`
	Documents  [][]string         `json:"documents,omitempty"`
	URIs       [][]string         `json:"uris,omitempty"`
}

func includeStrings(include []Include) []string {
	if len(include) == 0 {
		return nil
	}
	out := make([]string, len(include))
	for i, inc := range include {
		out[i] = string(inc)
	}
	return out
}

func fromOpsCollection(c ops.Collection) Collection {
	return Collection{
		ID:            c.ID,
		Name:          c.Name,
		Tenant:        c.Tenant,
		Database:      c.Database,
		Dimension:     c.Dimension,
		Metadata:      c.Metadata,
		Configuration: c.Configuration,
	}
}

func fromOpsPage(p ops.Page) GetResult {
	return GetResult{
		IDs:        p.IDs,
		Embeddings: p.Embeddings,
		Metadatas:  p.Metadatas,
		Documents:  p.Documents,
		URIs:       p.URIs,
	}
}

func fromOpsQueryResult(r ops.QueryResult) QueryResult {
	return QueryResult{
		IDs:        r.IDs,
		Distances:  r.Distances,
		Embeddings: r.Embeddings,
		Metadatas:  r.Metadatas,
		Documents:  r.Documents,
		URIs:       r.URIs,
	}
}
