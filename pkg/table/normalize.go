package table

import (
	"fmt"
	"strconv"
	"strings"
)

// SkipCode classifies why a raw row was dropped during normalization.
type SkipCode string

const (
	// SkipMissingState indicates an empty STATE field.
	SkipMissingState SkipCode = "missing_state"

	// SkipMissingParty indicates an empty CANDIDATE_PARTY field.
	SkipMissingParty SkipCode = "missing_party"

	// SkipMissingVotes indicates an empty VOTES field.
	SkipMissingVotes SkipCode = "missing_votes"

	// SkipBadVotes indicates a VOTES field that did not parse as an integer.
	SkipBadVotes SkipCode = "bad_votes"

	// SkipNegativeVotes indicates a VOTES field below zero.
	SkipNegativeVotes SkipCode = "negative_votes"
)

// SkippedRow records one dropped raw row and the reason it was dropped, so
// callers can audit losses instead of relying on side-channel output.
type SkippedRow struct {
	// Row is the index of the dropped row in the raw table.
	Row int `json:"row"`

	// Code classifies the drop reason.
	Code SkipCode `json:"code"`

	// Detail carries the offending value, when there is one.
	Detail string `json:"detail,omitempty"`
}

// NormalizeResult holds the usable records and the audit trail of drops.
type NormalizeResult struct {
	// Records are the normalized rows in input order.
	Records []Record `json:"records"`

	// Skipped lists dropped rows with reasons, in input order.
	Skipped []SkippedRow `json:"skipped"`
}

// Normalize assigns the canonical seven-column schema to the rows following
// the detected header and coerces each row into a Record. The header row
// itself becomes the first data row when it qualified by arity alone.
// sourceYear overwrites any in-row year unconditionally: year fields inside
// archival documents are unreliable, the file name is not.
//
// Rows missing STATE, CANDIDATE_PARTY, or VOTES, or whose VOTES fail to
// parse as a non-negative integer, are dropped with a SkippedRow entry.
// An empty record set after all drops yields ErrNoData.
func Normalize(rows [][]string, scan HeaderScan, sourceYear int) (NormalizeResult, error) {
	if !scan.Found {
		return NormalizeResult{}, ErrNoHeader
	}

	start := scan.Index
	if scan.BySentinel {
		start = scan.Index + 1
	}

	result := NormalizeResult{}
	for i := start; i < len(rows); i++ {
		row := rows[i]

		// Repeated embedded headers show up mid-file when page extractions
		// are concatenated; they are data to nobody. Only an exact match
		// against the canonical header qualifies — a looser containment
		// check would swallow real rows whose text happens to include a
		// column name ("GRACE", "STATES RIGHTS").
		if isCanonicalHeader(row) {
			continue
		}

		record, skip := normalizeRow(row, i, sourceYear)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		result.Records = append(result.Records, record)
	}

	if len(result.Records) == 0 {
		return result, fmt.Errorf("table of %d rows: %w", len(rows), ErrNoData)
	}
	return result, nil
}

// isCanonicalHeader reports whether a row is, field for field, the
// canonical seven-column header. Trailing empty fields are tolerated.
func isCanonicalHeader(row []string) bool {
	columns := Columns()
	if len(row) < len(columns) {
		return false
	}
	for i, name := range columns {
		if strings.ToUpper(strings.TrimSpace(row[i])) != name {
			return false
		}
	}
	for _, extra := range row[len(columns):] {
		if strings.TrimSpace(extra) != "" {
			return false
		}
	}
	return true
}

// normalizeRow coerces one positional row into a Record, or explains why
// it cannot be.
func normalizeRow(row []string, index, sourceYear int) (Record, *SkippedRow) {
	field := func(col int) string {
		if col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	state := strings.ToUpper(field(0))
	if state == "" {
		return Record{}, &SkippedRow{Row: index, Code: SkipMissingState}
	}

	party := strings.ToUpper(field(5))
	if party == "" {
		return Record{}, &SkippedRow{Row: index, Code: SkipMissingParty}
	}

	votesField := field(6)
	if votesField == "" {
		return Record{}, &SkippedRow{Row: index, Code: SkipMissingVotes}
	}
	votes, err := parseVotes(votesField)
	if err != nil {
		return Record{}, &SkippedRow{Row: index, Code: SkipBadVotes, Detail: votesField}
	}
	if votes < 0 {
		return Record{}, &SkippedRow{Row: index, Code: SkipNegativeVotes, Detail: votesField}
	}

	return Record{
		State:          state,
		Year:           sourceYear,
		RaceType:       strings.ToUpper(field(2)),
		District:       field(3),
		CandidateName:  strings.ToUpper(field(4)),
		CandidateParty: party,
		Votes:          votes,
	}, nil
}

// parseVotes parses a vote count, tolerating thousands separators.
func parseVotes(s string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.Atoi(cleaned)
}
