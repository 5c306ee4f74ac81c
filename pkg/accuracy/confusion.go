package accuracy

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// DigitAlphabet is the symbol alphabet for numeric field confusion.
const DigitAlphabet = "0123456789"

// DefaultTextAlphabet is the default symbol alphabet for text field
// confusion.
const DefaultTextAlphabet = "abcdefghijklmnopqrstuvwxyz"

// ConfusionMatrix counts, for each true symbol of a fixed alphabet, how
// often each predicted symbol occurred in its place. Diagonal entries are
// exact matches. Counts only grow; positions outside the alphabet are
// ignored.
type ConfusionMatrix struct {
	alphabet []rune
	index    map[rune]int

	// Counts[i][j] is the number of aligned positions where alphabet[i]
	// was the true symbol and alphabet[j] the predicted one.
	Counts [][]int `json:"counts"`
}

// NewConfusionMatrix creates a square confusion matrix over the given
// ordered symbol alphabet.
func NewConfusionMatrix(alphabet string) *ConfusionMatrix {
	symbols := []rune(alphabet)
	index := make(map[rune]int, len(symbols))
	counts := make([][]int, len(symbols))
	for i, symbol := range symbols {
		index[symbol] = i
		counts[i] = make([]int, len(symbols))
	}
	return &ConfusionMatrix{alphabet: symbols, index: index, Counts: counts}
}

// NewDigitConfusion creates the 10x10 digit confusion matrix.
func NewDigitConfusion() *ConfusionMatrix {
	return NewConfusionMatrix(DigitAlphabet)
}

// Alphabet returns the matrix's ordered symbol alphabet.
func (matrix *ConfusionMatrix) Alphabet() string {
	return string(matrix.alphabet)
}

// Size returns the alphabet size.
func (matrix *ConfusionMatrix) Size() int {
	return len(matrix.alphabet)
}

// Count returns the occurrence count for a (true, predicted) symbol pair.
// Symbols outside the alphabet report zero.
func (matrix *ConfusionMatrix) Count(truth, predicted rune) int {
	i, ok := matrix.index[truth]
	if !ok {
		return 0
	}
	j, ok := matrix.index[predicted]
	if !ok {
		return 0
	}
	return matrix.Counts[i][j]
}

// RowTotal returns the number of recorded positions with the given true
// symbol.
func (matrix *ConfusionMatrix) RowTotal(truth rune) int {
	i, ok := matrix.index[truth]
	if !ok {
		return 0
	}
	total := 0
	for _, count := range matrix.Counts[i] {
		total += count
	}
	return total
}

// record increments the (truth, predicted) cell if both symbols belong to
// the alphabet. Reports whether the position was counted.
func (matrix *ConfusionMatrix) record(truth, predicted rune) bool {
	i, ok := matrix.index[truth]
	if !ok {
		return false
	}
	j, ok := matrix.index[predicted]
	if !ok {
		return false
	}
	matrix.Counts[i][j]++
	return true
}

// CompareDigits walks two values rendered as decimal strings and updates
// the matrix at every aligned position where both characters are decimal
// digits. It returns the number of exact digit matches and the length of
// the true string, mirroring DigitLevelAccuracy's accounting.
func CompareDigits(trueVal, predVal string, matrix *ConfusionMatrix) (matched, total int) {
	total = len(trueVal)
	limit := len(trueVal)
	if len(predVal) < limit {
		limit = len(predVal)
	}
	for i := 0; i < limit; i++ {
		truth := rune(trueVal[i])
		predicted := rune(predVal[i])
		if !unicode.IsDigit(truth) || !unicode.IsDigit(predicted) {
			continue
		}
		matrix.record(truth, predicted)
		if truth == predicted {
			matched++
		}
	}
	return matched, total
}

// CompareChars lower-cases both strings and updates the matrix at every
// aligned position where both characters belong to the matrix alphabet.
func CompareChars(trueStr, predStr string, matrix *ConfusionMatrix) {
	truth := []rune(strings.ToLower(trueStr))
	predicted := []rune(strings.ToLower(predStr))
	limit := len(truth)
	if len(predicted) < limit {
		limit = len(predicted)
	}
	for i := 0; i < limit; i++ {
		matrix.record(truth[i], predicted[i])
	}
}

// Confusion summarizes the prediction distribution for one true symbol,
// surfacing systematic misreads such as "6 predicted as 8".
type Confusion struct {
	// Symbol is the true symbol.
	Symbol string `json:"symbol"`

	// RowTotal is the number of recorded positions for the symbol.
	RowTotal int `json:"row_total"`

	// Top is the most frequently predicted symbol.
	Top string `json:"top"`

	// TopCount is how often Top was predicted.
	TopCount int `json:"top_count"`

	// Second is the second most frequent prediction, empty unless
	// requested.
	Second string `json:"second,omitempty"`

	// SecondCount is how often Second was predicted.
	SecondCount int `json:"second_count,omitempty"`
}

// TopConfusions reports, for every symbol with a nonzero row total, the
// most frequently predicted symbol and, when includeSecond is set, the
// runner-up. Symbols appear in alphabet order.
func (matrix *ConfusionMatrix) TopConfusions(includeSecond bool) []Confusion {
	var confusions []Confusion
	for i, symbol := range matrix.alphabet {
		row := matrix.Counts[i]
		rowTotal := 0
		for _, count := range row {
			rowTotal += count
		}
		if rowTotal == 0 {
			continue
		}

		ranked := make([]int, len(row))
		for j := range ranked {
			ranked[j] = j
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return row[ranked[a]] > row[ranked[b]]
		})

		confusion := Confusion{
			Symbol:   string(symbol),
			RowTotal: rowTotal,
			Top:      string(matrix.alphabet[ranked[0]]),
			TopCount: row[ranked[0]],
		}
		if includeSecond && len(ranked) > 1 && row[ranked[1]] > 0 {
			confusion.Second = string(matrix.alphabet[ranked[1]])
			confusion.SecondCount = row[ranked[1]]
		}
		confusions = append(confusions, confusion)
	}
	return confusions
}

// FormatCSV renders the matrix as CSV with a header row and one row per
// true symbol, suitable for spreadsheet inspection.
func (matrix *ConfusionMatrix) FormatCSV() string {
	var builder strings.Builder

	builder.WriteString("true\\pred")
	for _, symbol := range matrix.alphabet {
		builder.WriteString(",")
		builder.WriteString(string(symbol))
	}
	builder.WriteString("\n")

	for i, symbol := range matrix.alphabet {
		builder.WriteString(string(symbol))
		for _, count := range matrix.Counts[i] {
			builder.WriteString(fmt.Sprintf(",%d", count))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
