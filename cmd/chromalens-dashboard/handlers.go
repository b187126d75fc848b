package main

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/chromalens/chromalens-go"
)

// statusSource is the slice of the client the dashboard reads from.
type statusSource interface {
	Heartbeat(ctx context.Context) (int64, error)
	Version(ctx context.Context) (string, error)
	ListCollections(ctx context.Context, limit, offset int) ([]chromalens.Collection, error)
	CountItems(ctx context.Context, collectionID string) (int, error)
}

// clientSource adapts *chromalens.Client to statusSource.
type clientSource struct {
	client *chromalens.Client
}

func (s clientSource) Heartbeat(ctx context.Context) (int64, error) {
	return s.client.Heartbeat(ctx)
}

func (s clientSource) Version(ctx context.Context) (string, error) {
	return s.client.Version(ctx)
}

func (s clientSource) ListCollections(ctx context.Context, limit, offset int) ([]chromalens.Collection, error) {
	return s.client.Collections().List(ctx, limit, offset)
}

func (s clientSource) CountItems(ctx context.Context, collectionID string) (int, error) {
	return s.client.Items(collectionID).Count(ctx)
}

type dashboard struct {
	source     statusSource
	logger     *zap.Logger
	refreshSec int
	tmpl       *template.Template
	detailTmpl *template.Template
	queryTmpl  *template.Template
}

func newDashboard(source statusSource, logger *zap.Logger, refreshSec int) *dashboard {
	return &dashboard{
		source:     source,
		logger:     logger,
		refreshSec: refreshSec,
		tmpl:       template.Must(template.New("status").Parse(statusPage)),
		detailTmpl: template.Must(template.New("detail").Parse(detailPage)),
		queryTmpl:  template.Must(template.New("query").Parse(queryPage)),
	}
}

type collectionRow struct {
	ID        string
	Name      string
	Dimension int
	Items     int
	CountErr  string
}

type statusView struct {
	RefreshSec  int
	Reachable   bool
	Version     string
	HeartbeatNS int64
	ServerErr   string
	Collections []collectionRow
	ListErr     string
	RenderedAt  string
}

// maxDashboardCollections caps the status page to one listing request.
const maxDashboardCollections = 100

func (d *dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := statusView{
		RefreshSec: d.refreshSec,
		RenderedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if ns, err := d.source.Heartbeat(ctx); err != nil {
		view.ServerErr = err.Error()
		d.logger.Warn("Heartbeat failed", zap.Error(err))
	} else {
		view.Reachable = true
		view.HeartbeatNS = ns
		if v, err := d.source.Version(ctx); err != nil {
			d.logger.Warn("Version probe failed", zap.Error(err))
		} else {
			view.Version = v
		}
	}

	if view.Reachable {
		colls, err := d.source.ListCollections(ctx, maxDashboardCollections, 0)
		if err != nil {
			view.ListErr = err.Error()
			d.logger.Warn("Collection listing failed", zap.Error(err))
		}
		for _, c := range colls {
			row := collectionRow{ID: c.ID, Name: c.Name, Dimension: c.Dimension}
			if n, err := d.source.CountItems(ctx, c.ID); err != nil {
				row.CountErr = err.Error()
			} else {
				row.Items = n
			}
			view.Collections = append(view.Collections, row)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.tmpl.Execute(w, view); err != nil {
		d.logger.Error("Template render failed", zap.Error(err))
	}
}

func (d *dashboard) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := d.source.Heartbeat(r.Context()); err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unreachable: " + err.Error() + "\n"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

const statusPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSec}}">
<title>ChromaLens Dashboard</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1c1c1c; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #d0d0d0; padding: 0.4rem 0.7rem; text-align: left; }
th { background: #f4f4f4; }
.ok { color: #1a7f37; }
.err { color: #b42318; }
.meta { color: #6a6a6a; font-size: 0.85rem; margin-top: 1.5rem; }
</style>
</head>
<body>
<h1>ChromaLens Dashboard</h1>
<p><a href="/query">Query console</a></p>
{{if .Reachable}}
<p class="ok">Server reachable{{if .Version}} (Chroma {{.Version}}){{end}}, heartbeat {{.HeartbeatNS}} ns.</p>
{{else}}
<p class="err">Server unreachable: {{.ServerErr}}</p>
{{end}}
{{if .ListErr}}
<p class="err">Collection listing failed: {{.ListErr}}</p>
{{end}}
{{if .Collections}}
<table>
<tr><th>Name</th><th>ID</th><th>Dimension</th><th>Items</th></tr>
{{range .Collections}}
<tr>
<td><a href="/collections/{{.ID}}">{{.Name}}</a></td>
<td>{{.ID}}</td>
<td>{{if .Dimension}}{{.Dimension}}{{else}}-{{end}}</td>
<td>{{if .CountErr}}<span class="err">{{.CountErr}}</span>{{else}}{{.Items}}{{end}}</td>
</tr>
{{end}}
</table>
{{else if .Reachable}}
<p>No collections.</p>
{{end}}
<p class="meta">Rendered {{.RenderedAt}}, refreshes every {{.RefreshSec}}s.</p>
</body>
</html>
`
