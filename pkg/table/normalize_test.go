package table

import (
	"errors"
	"strings"
	"testing"
)

func canonicalHeader() []string {
	return []string{"STATE", "YEAR", "RACE_TYPE", "CONGRESSIONAL_DISTRICT", "CANDIDATE_NAME", "CANDIDATE_PARTY", "VOTES"}
}

func TestNormalizeSingleRow(t *testing.T) {
	rows := [][]string{
		{"foo"},
		canonicalHeader(),
		{"IL", "1932", "HOUSE", "1", "SMITH", "REPUBLICAN", "1000"},
	}
	scan := ScanHeader(rows)

	result, err := Normalize(rows, scan, 1932)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(result.Records))
	}
	record := result.Records[0]
	if record.Votes != 1000 {
		t.Errorf("expected VOTES=1000, got %d", record.Votes)
	}
	if record.State != "IL" || record.CandidateParty != "REPUBLICAN" {
		t.Errorf("unexpected record: %+v", record)
	}
}

func TestNormalizeUpperCasesAndTrims(t *testing.T) {
	rows := [][]string{
		canonicalHeader(),
		{"  illinois ", "1932", "house", "1", " smith ", " republican ", "1000"},
	}

	result, err := Normalize(rows, ScanHeader(rows), 1932)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record := result.Records[0]
	if record.State != "ILLINOIS" {
		t.Errorf("expected trimmed upper-cased state, got %q", record.State)
	}
	if record.CandidateParty != "REPUBLICAN" {
		t.Errorf("expected trimmed upper-cased party, got %q", record.CandidateParty)
	}
	if record.CandidateName != "SMITH" {
		t.Errorf("expected trimmed upper-cased name, got %q", record.CandidateName)
	}
	if record.RaceType != "HOUSE" {
		t.Errorf("expected upper-cased race type, got %q", record.RaceType)
	}
}

func TestNormalizeOverridesYearFromSource(t *testing.T) {
	rows := [][]string{
		canonicalHeader(),
		{"IOWA", "9999", "SENATE", "", "JONES", "DEMOCRAT", "500"},
	}

	result, err := Normalize(rows, ScanHeader(rows), 1948)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Records[0].Year != 1948 {
		t.Errorf("in-row year must be overridden by source year, got %d", result.Records[0].Year)
	}
}

func TestNormalizeDropsBadRows(t *testing.T) {
	rows := [][]string{
		canonicalHeader(),
		{"", "1932", "HOUSE", "1", "A", "REPUBLICAN", "10"},
		{"OHIO", "1932", "HOUSE", "1", "B", "", "10"},
		{"OHIO", "1932", "HOUSE", "1", "C", "DEMOCRAT", ""},
		{"OHIO", "1932", "HOUSE", "1", "D", "DEMOCRAT", "ten"},
		{"OHIO", "1932", "HOUSE", "1", "E", "DEMOCRAT", "-5"},
		{"OHIO", "1932", "HOUSE", "1", "F", "DEMOCRAT", "12,345"},
	}

	result, err := Normalize(rows, ScanHeader(rows), 1932)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected one surviving record, got %d", len(result.Records))
	}
	if result.Records[0].Votes != 12345 {
		t.Errorf("thousands separators should be tolerated, got %d", result.Records[0].Votes)
	}

	wantCodes := []SkipCode{SkipMissingState, SkipMissingParty, SkipMissingVotes, SkipBadVotes, SkipNegativeVotes}
	if len(result.Skipped) != len(wantCodes) {
		t.Fatalf("expected %d skipped rows, got %d: %+v", len(wantCodes), len(result.Skipped), result.Skipped)
	}
	for i, want := range wantCodes {
		if result.Skipped[i].Code != want {
			t.Errorf("skip %d: expected %s, got %s", i, want, result.Skipped[i].Code)
		}
	}
}

func TestNormalizeArityOnlyHeaderIsData(t *testing.T) {
	rows := [][]string{
		{"OHIO", "1932", "HOUSE", "1", "SMITH", "REPUBLICAN", "100"},
		{"OHIO", "1932", "HOUSE", "1", "JONES", "DEMOCRAT", "90"},
	}
	scan := ScanHeader(rows)
	if scan.BySentinel {
		t.Fatal("fixture row should qualify by arity only")
	}

	result, err := Normalize(rows, scan, 1932)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("arity-only header row must be kept as data, got %d records", len(result.Records))
	}
}

func TestNormalizeSkipsEmbeddedRepeatedHeaders(t *testing.T) {
	rows := [][]string{
		canonicalHeader(),
		{"OHIO", "1932", "HOUSE", "1", "SMITH", "REPUBLICAN", "100"},
		canonicalHeader(),
		{"OHIO", "1932", "HOUSE", "2", "JONES", "DEMOCRAT", "90"},
	}

	result, err := Normalize(rows, ScanHeader(rows), 1932)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("embedded header rows are not data, got %d records", len(result.Records))
	}
}

func TestNormalizeKeepsRowsContainingColumnNames(t *testing.T) {
	// Field text that merely contains a column name is still data:
	// "GRACE" contains RACE, "STATES RIGHTS" contains STATE. Only an
	// exact header row may be skipped.
	rows := [][]string{
		canonicalHeader(),
		{"OHIO", "1932", "HOUSE", "1", "GRACE", "DEMOCRAT", "100"},
		{"OHIO", "1932", "HOUSE", "2", "SMITH", "STATES RIGHTS", "90"},
	}

	result, err := Normalize(rows, ScanHeader(rows), 1932)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if len(result.Skipped) != 0 {
		t.Errorf("no rows should be skipped, got %+v", result.Skipped)
	}
	if result.Records[0].CandidateName != "GRACE" {
		t.Errorf("unexpected first record: %+v", result.Records[0])
	}
	if result.Records[1].CandidateParty != "STATES RIGHTS" {
		t.Errorf("unexpected second record: %+v", result.Records[1])
	}
}

func TestNormalizeNoHeader(t *testing.T) {
	rows := [][]string{{"just"}, {"noise"}}

	_, err := Normalize(rows, ScanHeader(rows), 1932)
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}
}

func TestNormalizeZeroUsableRows(t *testing.T) {
	rows := [][]string{
		canonicalHeader(),
		{"", "", "", "", "", "", ""},
	}

	_, err := Normalize(rows, ScanHeader(rows), 1932)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestReadRawRaggedRows(t *testing.T) {
	input := "STATE,YEAR,RACE_TYPE,CONGRESSIONAL_DISTRICT,CANDIDATE_NAME,CANDIDATE_PARTY,VOTES\nIL,1932,HOUSE,1,SMITH,REPUBLICAN,1000\nshort,row\n"

	rows, err := ReadRaw(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows including the ragged one, got %d", len(rows))
	}
	if len(rows[2]) != 2 {
		t.Errorf("ragged row should keep its own arity, got %d fields", len(rows[2]))
	}
}
