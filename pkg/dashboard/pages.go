package dashboard

import (
	"errors"
	"html/template"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/statline/electstats/pkg/table"
)

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "layout_head"}}<!doctype html>
<html><head><title>Election Statistics</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 4px 8px; }
nav a { margin-right: 1em; }
.message { color: #666; font-style: italic; }
</style>
</head><body>
<nav><a href="/">Home</a><a href="/data">Data</a><a href="/map">Map</a><a href="/chart">Chart</a></nav>
{{end}}

{{define "index"}}{{template "layout_head"}}
<h1>Election Statistics</h1>
<p>Digitized historical U.S. election results.</p>
{{if .Years}}
<h2>Available years</h2>
<ul>
{{range .Years}}<li><a href="/data?year={{.}}">{{.}}</a></li>
{{end}}</ul>
{{else}}
<p class="message">No election data has been extracted yet.</p>
{{end}}
</body></html>{{end}}

{{define "data"}}{{template "layout_head"}}
<h1>Results for {{.Year}}</h1>
{{if .Message}}
<p class="message">{{.Message}}</p>
{{else}}
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>
<td>{{.State}}</td><td>{{.Year}}</td><td>{{.RaceType}}</td>
<td>{{.District}}</td><td>{{.CandidateName}}</td>
<td>{{.CandidateParty}}</td><td>{{.Votes}}</td>
</tr>{{end}}
</table>
{{end}}
</body></html>{{end}}

{{define "fetchpage"}}{{template "layout_head"}}
<h1>{{.Title}}</h1>
<div id="content" class="message">Loading…</div>
<script>
fetch({{.Endpoint}})
  .then(function (response) { return response.json(); })
  .then(function (body) {
    var node = document.getElementById("content");
    if (body.error || body.message) {
      node.textContent = body.error || body.message;
      return;
    }
    node.className = "";
    node.textContent = JSON.stringify(body, null, 2);
    node.style.whiteSpace = "pre";
    node.style.fontFamily = "monospace";
  })
  .catch(function (err) {
    document.getElementById("content").textContent = String(err);
  });
</script>
</body></html>{{end}}
`))

type indexData struct {
	Years []string
}

func (server *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	years, err := server.store.Years()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	server.renderPage(w, http.StatusOK, "index", indexData{Years: years})
}

type dataPageData struct {
	Year    string
	Columns []string
	Rows    []table.Record
	Message string
}

func (server *Server) handleDataPage(w http.ResponseWriter, r *http.Request) {
	year := r.URL.Query().Get("year")
	page := dataPageData{Year: year, Columns: table.Columns()}

	records, err := server.store.Load(year)
	switch {
	case err == nil:
		page.Rows = records
		server.renderPage(w, http.StatusOK, "data", page)
	case errors.Is(err, table.ErrNoData):
		page.Message = "no data available for this selection"
		server.renderPage(w, http.StatusOK, "data", page)
	case errors.Is(err, os.ErrNotExist):
		page.Message = err.Error()
		server.renderPage(w, http.StatusNotFound, "data", page)
	case errors.Is(err, table.ErrNoHeader):
		page.Message = err.Error()
		server.renderPage(w, http.StatusUnprocessableEntity, "data", page)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type fetchPageData struct {
	Title    string
	Endpoint string
}

func (server *Server) handleMapPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.RawQuery
	endpoint := "/api/results"
	if query != "" {
		endpoint += "?" + query
	}
	server.renderPage(w, http.StatusOK, "fetchpage", fetchPageData{
		Title:    "Majority party by state",
		Endpoint: endpoint,
	})
}

func (server *Server) handleChartPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.RawQuery
	endpoint := "/api/party-votes"
	if query != "" {
		endpoint += "?" + query
	}
	server.renderPage(w, http.StatusOK, "fetchpage", fetchPageData{
		Title:    "National votes by party",
		Endpoint: endpoint,
	})
}

// renderPage writes one named template with the given status.
func (server *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		server.logger.Warn("failed to render page",
			zap.String("template", name),
			zap.Error(err))
	}
}
