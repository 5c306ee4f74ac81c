// Package table turns raw, possibly malformed election CSV tables into
// clean, typed record sequences. It owns header detection, column
// normalization, and per-row skip accounting; it performs no file I/O.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Column names assigned to the seven-column election schema, in order.
const (
	ColumnState     = "STATE"
	ColumnYear      = "YEAR"
	ColumnRaceType  = "RACE_TYPE"
	ColumnDistrict  = "CONGRESSIONAL_DISTRICT"
	ColumnCandidate = "CANDIDATE_NAME"
	ColumnParty     = "CANDIDATE_PARTY"
	ColumnVotes     = "VOTES"
)

// Columns returns the canonical column order of the election schema.
func Columns() []string {
	return []string{
		ColumnState, ColumnYear, ColumnRaceType, ColumnDistrict,
		ColumnCandidate, ColumnParty, ColumnVotes,
	}
}

// ErrNoHeader indicates the table is entirely unreadable: no row qualifies
// as a header, so no column assignment is possible.
var ErrNoHeader = errors.New("no usable header row found")

// ErrNoData indicates a well-formed table that yields zero usable rows
// after normalization or filtering. Distinct from ErrNoHeader and from a
// missing file so callers can surface different messages for each.
var ErrNoData = errors.New("no usable data rows")

// Record is one normalized election result row.
type Record struct {
	// State is the upper-cased, trimmed region name.
	State string `json:"state"`

	// Year is the election year, always taken from the source file name.
	Year int `json:"year"`

	// RaceType is the upper-cased contest label as it appeared in the row.
	RaceType string `json:"race_type"`

	// District is the congressional district, empty for non-House races.
	District string `json:"congressional_district"`

	// CandidateName is the upper-cased candidate name (may be empty).
	CandidateName string `json:"candidate_name"`

	// CandidateParty is the upper-cased, trimmed party name.
	CandidateParty string `json:"candidate_party"`

	// Votes is the non-negative vote count.
	Votes int `json:"votes"`
}

// ReadRaw reads a raw positional table from r. Rows keep their original
// field counts; blank lines are dropped by the CSV reader. Quoting errors
// are tolerated so partially corrupt extractions still load.
func ReadRaw(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip unreadable lines the way the upstream extraction
			// tolerates bad rows; the row is gone either way.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("failed to read raw table: %w", err)
		}
		rows = append(rows, fields)
	}
	return rows, nil
}
