package ops

// Wire representations of the server resources. The public package converts
// these into its own types at the API boundary.

type Tenant struct {
	Name string `json:"name"`
}

type Database struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Tenant string `json:"tenant,omitempty"`
}

type Collection struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Tenant        string         `json:"tenant,omitempty"`
	Database      string         `json:"database,omitempty"`
	Dimension     int            `json:"dimension,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Configuration map[string]any `json:"configuration_json,omitempty"`
}

// Batch carries parallel slices for write operations. Only IDs and
// Embeddings are ever mandatory; which ones depends on the operation.
type Batch struct {
	IDs        []string
	Embeddings [][]float32
	Metadatas  []map[string]any
	Documents  []string
	URIs       []string
}

// Page is the result of a get over collection items.
type Page struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings,omitempty"`
	Metadatas  []map[string]any `json:"metadatas,omitempty"`
	Documents  []string         `json:"documents,omitempty"`
	URIs       []string         `json:"uris,omitempty"`
}

// QueryResult groups nearest-neighbour matches per query embedding. The
// outer dimension follows the order of the query embeddings.
type QueryResult struct {
	IDs        [][]string         `json:"ids"`
	Distances  [][]float64        `json:"distances,omitempty"`
	Embeddings [][][]float32      `json:"embeddings,omitempty"`
	Metadatas  [][]map[string]any `json:"metadatas,omitempty"`
	Documents  [][]string         `json:"documents,omitempty"`
	URIs       [][]string         `json:"uris,omitempty"`
}
