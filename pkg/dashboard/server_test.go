package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureCSV = `STATE,YEAR,RACE_TYPE,CONGRESSIONAL_DISTRICT,CANDIDATE_NAME,CANDIDATE_PARTY,VOTES
IOWA,1932,HOUSE,1,SWANSON,REPUBLICAN,40000
IOWA,1932,HOUSE,1,JONES,DEMOCRAT,60000
OHIO,1932,SENATE,,BULKLEY,DEMOCRAT,1770748
OHIO,1932,SENATE,,GROSSER,REPUBLICAN,1214953
`

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	csvDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(csvDir, "sorted_election_1932.csv"), []byte(fixtureCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(NewServer(csvDir).Handler())
	t.Cleanup(server.Close)
	return server, csvDir
}

func getJSON(t *testing.T, url string, wantStatus int, into any) {
	t.Helper()
	response, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer response.Body.Close()
	if response.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, response.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(response.Body).Decode(into); err != nil {
		t.Fatalf("GET %s: bad JSON: %v", url, err)
	}
}

func TestYearsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body yearsResponse
	getJSON(t, server.URL+"/api/years", http.StatusOK, &body)
	if len(body.Years) != 1 || body.Years[0] != "1932" {
		t.Errorf("unexpected years: %v", body.Years)
	}
}

func TestResultsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body resultsResponse
	getJSON(t, server.URL+"/api/results?year=1932", http.StatusOK, &body)

	if len(body.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %+v", body.Regions)
	}
	// Regions are sorted by name: IOWA then OHIO.
	iowa := body.Regions[0]
	if iowa.Region != "IOWA" || iowa.WinnerParty != "DEMOCRAT" {
		t.Errorf("unexpected Iowa result: %+v", iowa)
	}
	if iowa.Margin != 20000 {
		t.Errorf("Iowa margin = %d, want 20000", iowa.Margin)
	}
	if iowa.Code != "IA" || iowa.Color != "blue" {
		t.Errorf("Iowa code/color = %s/%s", iowa.Code, iowa.Color)
	}
	if body.Mode != "party" {
		t.Errorf("default mode = %s, want party", body.Mode)
	}
}

func TestResultsRaceFilterAndMarginMode(t *testing.T) {
	server, _ := newTestServer(t)

	var body resultsResponse
	getJSON(t, server.URL+"/api/results?year=1932&race=SENATE&margin=1", http.StatusOK, &body)

	if len(body.Regions) != 1 || body.Regions[0].Region != "OHIO" {
		t.Fatalf("senate filter should leave Ohio only: %+v", body.Regions)
	}
	if body.Mode != "margin" {
		t.Errorf("mode = %s, want margin", body.Mode)
	}
}

func TestResultsMissingYearIs404(t *testing.T) {
	server, _ := newTestServer(t)

	var body errorResponse
	getJSON(t, server.URL+"/api/results?year=1999", http.StatusNotFound, &body)
	if !strings.Contains(body.Error, "1999") {
		t.Errorf("error should name the year: %q", body.Error)
	}
}

func TestResultsUnreadableFileIs422(t *testing.T) {
	server, csvDir := newTestServer(t)

	garbage := "scanned page 1\nillegible,content\n"
	if err := os.WriteFile(filepath.Join(csvDir, "election_1870.csv"), []byte(garbage), 0o644); err != nil {
		t.Fatal(err)
	}

	var body errorResponse
	getJSON(t, server.URL+"/api/results?year=1870", http.StatusUnprocessableEntity, &body)
	if !strings.Contains(body.Error, "unexpected format") {
		t.Errorf("expected format error, got %q", body.Error)
	}
}

func TestResultsEmptySelectionIs200WithMessage(t *testing.T) {
	server, _ := newTestServer(t)

	var body resultsResponse
	getJSON(t, server.URL+"/api/results?year=1932&race=PRESIDENTIAL", http.StatusOK, &body)
	if len(body.Regions) != 0 {
		t.Errorf("expected no regions, got %+v", body.Regions)
	}
	if body.Message == "" {
		t.Error("empty selection should carry an explicit message")
	}
}

func TestPartyVotesEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body partyVotesResponse
	getJSON(t, server.URL+"/api/party-votes?year=1932", http.StatusOK, &body)

	totals := make(map[string]int)
	for _, party := range body.Parties {
		totals[party.Party] = party.Votes
	}
	if totals["DEMOCRAT"] != 60000+1770748 {
		t.Errorf("democrat total = %d", totals["DEMOCRAT"])
	}
	if totals["REPUBLICAN"] != 40000+1214953 {
		t.Errorf("republican total = %d", totals["REPUBLICAN"])
	}
}

func TestTableEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body tableResponse
	getJSON(t, server.URL+"/api/table?year=1932", http.StatusOK, &body)
	if len(body.Rows) != 4 {
		t.Errorf("expected 4 rows, got %d", len(body.Rows))
	}
	if len(body.Columns) != 7 {
		t.Errorf("expected 7 columns, got %v", body.Columns)
	}
}

func TestIndexAndDataPages(t *testing.T) {
	server, _ := newTestServer(t)

	if !strings.Contains(getPage(t, server.URL+"/"), "1932") {
		t.Error("index page should list the available year")
	}
	if !strings.Contains(getPage(t, server.URL+"/data?year=1932"), "SWANSON") {
		t.Error("data page should render the rows")
	}
}

func getPage(t *testing.T, url string) string {
	t.Helper()
	response, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("GET %s: read failed: %v", url, err)
	}
	return string(body)
}
