package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chromalens/chromalens-go"
)

// detailSource extends statusSource with the reads the drill-down pages need.
type detailSource interface {
	statusSource
	GetCollection(ctx context.Context, id string) (chromalens.Collection, error)
	SampleItems(ctx context.Context, collectionID string, limit int) (chromalens.GetResult, error)
	Query(ctx context.Context, collectionID string, p chromalens.QueryParams) (chromalens.QueryResult, error)
	QueryText(ctx context.Context, collectionID string, p chromalens.TextQueryParams) (chromalens.QueryResult, error)
}

func (s clientSource) GetCollection(ctx context.Context, id string) (chromalens.Collection, error) {
	return s.client.Collections().GetByID(ctx, id)
}

func (s clientSource) SampleItems(ctx context.Context, collectionID string, limit int) (chromalens.GetResult, error) {
	return s.client.Items(collectionID).Get(ctx, chromalens.GetParams{
		Limit:   limit,
		Include: []chromalens.Include{chromalens.IncludeDocuments, chromalens.IncludeMetadatas},
	})
}

func (s clientSource) Query(ctx context.Context, collectionID string, p chromalens.QueryParams) (chromalens.QueryResult, error) {
	return s.client.Items(collectionID).Query(ctx, p)
}

func (s clientSource) QueryText(ctx context.Context, collectionID string, p chromalens.TextQueryParams) (chromalens.QueryResult, error) {
	return s.client.Items(collectionID).QueryText(ctx, p)
}

const sampleLimit = 10

type itemRow struct {
	ID       string
	Document string
	Metadata string
}

type detailView struct {
	RefreshSec int
	Collection chromalens.Collection
	Items      int
	CountErr   string
	Sample     []itemRow
	SampleErr  string
}

func (d *dashboard) handleCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	source, ok := d.source.(detailSource)
	if !ok {
		http.NotFound(w, r)
		return
	}

	coll, err := source.GetCollection(ctx, id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chromalens.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	view := detailView{RefreshSec: d.refreshSec, Collection: coll}
	if n, err := source.CountItems(ctx, coll.ID); err != nil {
		view.CountErr = err.Error()
	} else {
		view.Items = n
	}
	if res, err := source.SampleItems(ctx, coll.ID, sampleLimit); err != nil {
		view.SampleErr = err.Error()
		d.logger.Warn("Item sample failed", zap.String("collection", coll.ID), zap.Error(err))
	} else {
		for i, itemID := range res.IDs {
			row := itemRow{ID: itemID, Document: "-", Metadata: "-"}
			if i < len(res.Documents) && res.Documents[i] != "" {
				row.Document = res.Documents[i]
			}
			if i < len(res.Metadatas) && res.Metadatas[i] != nil {
				if b, err := json.Marshal(res.Metadatas[i]); err == nil {
					row.Metadata = string(b)
				}
			}
			view.Sample = append(view.Sample, row)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.detailTmpl.Execute(w, view); err != nil {
		d.logger.Error("Template render failed", zap.Error(err))
	}
}

type queryHit struct {
	ID       string
	Distance float64
	Document string
}

type queryView struct {
	CollectionID string
	Text         string
	Embedding    string
	NResults     int
	Hits         []queryHit
	Err          string
	Ran          bool
}

func (d *dashboard) handleQuery(w http.ResponseWriter, r *http.Request) {
	view := queryView{NResults: 10}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		view.CollectionID = strings.TrimSpace(r.PostFormValue("collection"))
		view.Text = strings.TrimSpace(r.PostFormValue("text"))
		view.Embedding = strings.TrimSpace(r.PostFormValue("embedding"))
		if n := formInt(r.PostFormValue("n_results")); n > 0 {
			view.NResults = n
		}
		d.runQuery(r.Context(), &view)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.queryTmpl.Execute(w, view); err != nil {
		d.logger.Error("Template render failed", zap.Error(err))
	}
}

func (d *dashboard) runQuery(ctx context.Context, view *queryView) {
	source, ok := d.source.(detailSource)
	if !ok {
		view.Err = "querying is not available"
		return
	}
	if view.CollectionID == "" {
		view.Err = "collection id is required"
		return
	}

	include := []chromalens.Include{chromalens.IncludeDocuments, chromalens.IncludeDistances}
	var (
		res chromalens.QueryResult
		err error
	)
	switch {
	case view.Text != "":
		res, err = source.QueryText(ctx, view.CollectionID, chromalens.TextQueryParams{
			Texts:    []string{view.Text},
			NResults: view.NResults,
			Include:  include,
		})
	case view.Embedding != "":
		var vec []float32
		if err := json.Unmarshal([]byte(view.Embedding), &vec); err != nil {
			view.Err = "embedding must be a JSON array of numbers: " + err.Error()
			return
		}
		res, err = source.Query(ctx, view.CollectionID, chromalens.QueryParams{
			Embeddings: [][]float32{vec},
			NResults:   view.NResults,
			Include:    include,
		})
	default:
		view.Err = "provide a query text or an embedding"
		return
	}
	if err != nil {
		view.Err = err.Error()
		return
	}

	view.Ran = true
	if len(res.IDs) == 0 {
		return
	}
	for i, id := range res.IDs[0] {
		hit := queryHit{ID: id, Document: "-"}
		if len(res.Distances) > 0 && i < len(res.Distances[0]) {
			hit.Distance = res.Distances[0][i]
		}
		if len(res.Documents) > 0 && i < len(res.Documents[0]) && res.Documents[0][i] != "" {
			hit.Document = res.Documents[0][i]
		}
		view.Hits = append(view.Hits, hit)
	}
}

func formInt(s string) int {
	n := 0
	for _, c := range strings.TrimSpace(s) {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

const detailPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSec}}">
<title>{{.Collection.Name}} - ChromaLens Dashboard</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1c1c1c; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #d0d0d0; padding: 0.4rem 0.7rem; text-align: left; }
th { background: #f4f4f4; }
.err { color: #b42318; }
a { color: #0550ae; }
</style>
</head>
<body>
<p><a href="/">&larr; all collections</a></p>
<h1>{{.Collection.Name}}</h1>
<table>
<tr><th>ID</th><td>{{.Collection.ID}}</td></tr>
{{if .Collection.Dimension}}<tr><th>Dimension</th><td>{{.Collection.Dimension}}</td></tr>{{end}}
<tr><th>Items</th><td>{{if .CountErr}}<span class="err">{{.CountErr}}</span>{{else}}{{.Items}}{{end}}</td></tr>
</table>
{{if .SampleErr}}
<p class="err">Item sample failed: {{.SampleErr}}</p>
{{else if .Sample}}
<h2>Sample items</h2>
<table>
<tr><th>ID</th><th>Document</th><th>Metadata</th></tr>
{{range .Sample}}
<tr><td>{{.ID}}</td><td>{{.Document}}</td><td>{{.Metadata}}</td></tr>
{{end}}
</table>
{{else}}
<p>No items.</p>
{{end}}
</body>
</html>
`

const queryPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Query - ChromaLens Dashboard</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1c1c1c; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #d0d0d0; padding: 0.4rem 0.7rem; text-align: left; }
th { background: #f4f4f4; }
label { display: block; margin-top: 0.7rem; }
input, textarea { width: 100%; box-sizing: border-box; padding: 0.3rem; }
button { margin-top: 1rem; padding: 0.4rem 1.2rem; }
.err { color: #b42318; }
a { color: #0550ae; }
</style>
</head>
<body>
<p><a href="/">&larr; all collections</a></p>
<h1>Query</h1>
<form method="post" action="/query">
<label>Collection id <input name="collection" value="{{.CollectionID}}"></label>
<label>Query text (uses the configured embedder) <input name="text" value="{{.Text}}"></label>
<label>Or raw embedding as a JSON array <textarea name="embedding" rows="2">{{.Embedding}}</textarea></label>
<label>Results <input name="n_results" value="{{.NResults}}"></label>
<button type="submit">Run</button>
</form>
{{if .Err}}
<p class="err">{{.Err}}</p>
{{else if .Ran}}
{{if .Hits}}
<table>
<tr><th>ID</th><th>Distance</th><th>Document</th></tr>
{{range .Hits}}
<tr><td>{{.ID}}</td><td>{{printf "%.4f" .Distance}}</td><td>{{.Document}}</td></tr>
{{end}}
</table>
{{else}}
<p>No matches.</p>
{{end}}
{{end}}
</body>
</html>
`
