package table

import (
	"strings"
)

// expectedColumns is the arity of the canonical election schema.
const expectedColumns = 7

// headerScanWindow is how many leading rows may qualify as a header by
// arity alone, without a sentinel token.
const headerScanWindow = 10

// headerSentinels are tokens whose presence marks a row as a header.
var headerSentinels = []string{"STATE", "YEAR", "RACE", "CANDIDATE", "PARTY", "VOTES"}

// scanState is the classifier state while walking rows top to bottom.
type scanState int

const (
	seekingHeader scanState = iota
	inData
)

// HeaderScan is the tagged outcome of a header scan.
type HeaderScan struct {
	// Found reports whether any row qualified as a header.
	Found bool

	// Index is the row index of the header when Found.
	Index int

	// BySentinel is true when the row matched on a sentinel token. When
	// false the row qualified by arity alone and should be treated as the
	// first data row, not consumed as a header.
	BySentinel bool
}

// ScanHeader classifies rows until one qualifies as the header. A row
// qualifies if it has at least expectedColumns non-empty fields and either
// contains a sentinel token, or sits within the first headerScanWindow rows
// with exactly expectedColumns non-empty fields. The first qualifying row
// wins.
func ScanHeader(rows [][]string) HeaderScan {
	state := seekingHeader
	for i, row := range rows {
		if state != seekingHeader {
			break
		}
		nonEmpty := countNonEmpty(row)
		if nonEmpty < expectedColumns {
			continue
		}
		if rowHasSentinel(row) {
			state = inData
			return HeaderScan{Found: true, Index: i, BySentinel: true}
		}
		if i < headerScanWindow && nonEmpty == expectedColumns {
			state = inData
			return HeaderScan{Found: true, Index: i, BySentinel: false}
		}
	}
	return HeaderScan{}
}

// rowHasSentinel checks the concatenated upper-cased row text for any
// header sentinel token.
func rowHasSentinel(row []string) bool {
	joined := strings.ToUpper(strings.Join(row, " "))
	for _, sentinel := range headerSentinels {
		if strings.Contains(joined, sentinel) {
			return true
		}
	}
	return false
}

// countNonEmpty counts fields that are non-empty after trimming.
func countNonEmpty(row []string) int {
	count := 0
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			count++
		}
	}
	return count
}
