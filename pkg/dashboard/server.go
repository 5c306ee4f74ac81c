// Package dashboard serves the digitized election results over HTTP:
// JSON endpoints for the map, bar chart, and data table, plus the HTML
// pages that render them.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/statline/electstats/pkg/majority"
	"github.com/statline/electstats/pkg/table"
)

// Server is the dashboard HTTP handler set.
type Server struct {
	store   *Store
	aliases table.AliasTable
	codes   majority.CodeTable
	colors  majority.ColorTable
	logger  *zap.Logger
}

// NewServer creates a Server reading CSVs from csvDir with the default
// alias, region-code, and color tables.
func NewServer(csvDir string) *Server {
	return &Server{
		store:   NewStore(csvDir),
		aliases: table.DefaultAliasTable(),
		codes:   majority.DefaultCodeTable(),
		colors:  majority.DefaultColorTable(),
		logger:  zap.NewNop(),
	}
}

// SetLogger replaces the no-op logger.
func (server *Server) SetLogger(logger *zap.Logger) {
	if logger != nil {
		server.logger = logger
	}
}

// Handler returns the routed HTTP handler with request logging.
func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleIndex)
	mux.HandleFunc("GET /data", server.handleDataPage)
	mux.HandleFunc("GET /map", server.handleMapPage)
	mux.HandleFunc("GET /chart", server.handleChartPage)
	mux.HandleFunc("GET /api/years", server.handleYears)
	mux.HandleFunc("GET /api/results", server.handleResults)
	mux.HandleFunc("GET /api/party-votes", server.handlePartyVotes)
	mux.HandleFunc("GET /api/table", server.handleTable)
	return server.logRequests(mux)
}

// logRequests wraps a handler with zap request logging.
func (server *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		server.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// errorResponse is the JSON body for failed API requests.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON renders v as JSON with the given status.
func (server *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		server.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// writeLoadError maps the load-error taxonomy onto HTTP statuses:
// missing file is 404, unreadable table is 422. ErrNoData is handled by
// callers since an empty selection is a 200 with a message.
func (server *Server) writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, os.ErrNotExist):
		server.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, table.ErrNoHeader):
		server.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, table.ErrNoData):
		server.writeJSON(w, http.StatusOK, errorResponse{Error: "no data available for this selection"})
	default:
		server.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// yearsResponse is the /api/years body.
type yearsResponse struct {
	Years []string `json:"years"`
}

func (server *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := server.store.Years()
	if err != nil {
		server.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if years == nil {
		years = []string{}
	}
	server.writeJSON(w, http.StatusOK, yearsResponse{Years: years})
}

// resultsResponse is the /api/results body.
type resultsResponse struct {
	Year string `json:"year"`

	// Race is the contest filter applied, empty for all contests.
	Race string `json:"race,omitempty"`

	// Mode is the choropleth coloring mode: "party" or "margin".
	Mode string `json:"mode"`

	Regions []majority.RegionResult `json:"regions"`

	// Unmapped lists regions excluded for lack of a plotting code.
	Unmapped []string `json:"unmapped,omitempty"`

	// Message is set when the selection matched no data.
	Message string `json:"message,omitempty"`
}

func (server *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	year := r.URL.Query().Get("year")
	race := r.URL.Query().Get("race")

	mode := "party"
	switch r.URL.Query().Get("margin") {
	case "1", "true", "yes":
		mode = "margin"
	}

	result, err := server.regionResults(year, race)
	if err != nil {
		if errors.Is(err, table.ErrNoData) {
			server.writeJSON(w, http.StatusOK, resultsResponse{
				Year: year, Race: race, Mode: mode,
				Regions: []majority.RegionResult{},
				Message: "no data available for this selection",
			})
			return
		}
		server.writeLoadError(w, err)
		return
	}

	server.writeJSON(w, http.StatusOK, resultsResponse{
		Year:     year,
		Race:     race,
		Mode:     mode,
		Regions:  result.Regions,
		Unmapped: result.Unmapped,
	})
}

// regionResults loads one year and computes per-region winners, with an
// optional contest filter.
func (server *Server) regionResults(year, race string) (majority.Result, error) {
	records, err := server.store.Load(year)
	if err != nil {
		return majority.Result{}, err
	}

	if race == "" {
		return majority.Compute(records, server.codes, server.colors)
	}

	contest, ok := table.ParseContestType(race, server.aliases)
	if !ok {
		return majority.Result{}, fmt.Errorf("unknown race type %q: %w", race, table.ErrNoData)
	}
	filtered := table.FilterContest(records, contest, server.aliases)
	if len(filtered) == 0 {
		return majority.Result{}, fmt.Errorf("no %s rows for %s: %w", contest, year, table.ErrNoData)
	}
	return majority.Compute(filtered, server.codes, server.colors)
}

// partyVotes is one bar of the national party-totals chart.
type partyVotes struct {
	Party string `json:"party"`
	Votes int    `json:"votes"`
	Color string `json:"color"`
}

// partyVotesResponse is the /api/party-votes body.
type partyVotesResponse struct {
	Year    string       `json:"year"`
	Race    string       `json:"race,omitempty"`
	Parties []partyVotes `json:"parties"`
	Message string       `json:"message,omitempty"`
}

func (server *Server) handlePartyVotes(w http.ResponseWriter, r *http.Request) {
	year := r.URL.Query().Get("year")
	race := r.URL.Query().Get("race")

	records, err := server.store.Load(year)
	if err != nil {
		server.writeLoadError(w, err)
		return
	}

	if race != "" {
		contest, ok := table.ParseContestType(race, server.aliases)
		if !ok {
			records = nil
		} else {
			records = table.FilterContest(records, contest, server.aliases)
		}
	}
	if len(records) == 0 {
		server.writeJSON(w, http.StatusOK, partyVotesResponse{
			Year: year, Race: race,
			Parties: []partyVotes{},
			Message: "no data available for this selection",
		})
		return
	}

	// National totals in first-seen party order.
	totals := make(map[string]int)
	var order []string
	for _, record := range records {
		if _, seen := totals[record.CandidateParty]; !seen {
			order = append(order, record.CandidateParty)
		}
		totals[record.CandidateParty] += record.Votes
	}

	parties := make([]partyVotes, 0, len(order))
	for _, party := range order {
		parties = append(parties, partyVotes{
			Party: party,
			Votes: totals[party],
			Color: server.colors.Color(party),
		})
	}
	server.writeJSON(w, http.StatusOK, partyVotesResponse{Year: year, Race: race, Parties: parties})
}

// tableResponse is the /api/table body.
type tableResponse struct {
	Year    string         `json:"year"`
	Columns []string       `json:"columns"`
	Rows    []table.Record `json:"rows"`
	Message string         `json:"message,omitempty"`
}

func (server *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	year := r.URL.Query().Get("year")

	records, err := server.store.Load(year)
	if err != nil {
		if errors.Is(err, table.ErrNoData) {
			server.writeJSON(w, http.StatusOK, tableResponse{
				Year:    year,
				Columns: table.Columns(),
				Rows:    []table.Record{},
				Message: "no data available for this selection",
			})
			return
		}
		server.writeLoadError(w, err)
		return
	}

	server.writeJSON(w, http.StatusOK, tableResponse{
		Year:    year,
		Columns: table.Columns(),
		Rows:    records,
	})
}
