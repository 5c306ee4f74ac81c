// Package accuracy measures how closely LLM-extracted election tables match
// human-labeled ground truth: digit-level accuracy, edit distance, symbol
// confusion matrices, exact-match rates, and numeric error statistics.
//
// All evaluation is positional: row i of the predicted table is assumed to
// describe the same underlying fact as row i of the true table. There is no
// reconciliation or matching logic.
package accuracy

import (
	"encoding/json"
	"math"
)

// Metric is a scalar measurement that may be undefined (for example the
// MAPE of a column with no parseable samples). Undefined is explicit, never
// reported as zero.
type Metric struct {
	// Value is the measurement. Meaningless when Defined is false.
	Value float64

	// Defined reports whether any samples contributed to Value.
	Defined bool
}

// DefinedMetric wraps a computed value.
func DefinedMetric(value float64) Metric {
	return Metric{Value: value, Defined: true}
}

// UndefinedMetric is the explicit "no samples" result.
func UndefinedMetric() Metric {
	return Metric{Value: math.NaN()}
}

// MarshalJSON renders undefined metrics as null so downstream consumers
// cannot mistake them for a real zero.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts null as undefined.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = UndefinedMetric()
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*m = DefinedMetric(value)
	return nil
}

// DigitLevelAccuracy compares two values rendered as decimal strings,
// character by character up to the length of the shorter string. It returns
// the number of matching positions and the length of the true string.
func DigitLevelAccuracy(trueVal, predVal string) (matched, total int) {
	total = len(trueVal)
	limit := len(trueVal)
	if len(predVal) < limit {
		limit = len(predVal)
	}
	for i := 0; i < limit; i++ {
		if trueVal[i] == predVal[i] {
			matched++
		}
	}
	return matched, total
}

// LevenshteinDistance computes the minimum number of single-character
// insertions, deletions, and substitutions needed to turn s1 into s2.
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	rows, cols := len(s1)+1, len(s2)+1
	dp := make([][]int, rows)
	for i := range dp {
		dp[i] = make([]int, cols)
		dp[i][0] = i
	}
	for j := 0; j < cols; j++ {
		dp[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			deletion := dp[i-1][j] + 1
			insertion := dp[i][j-1] + 1
			substitution := dp[i-1][j-1] + cost

			minimum := deletion
			if insertion < minimum {
				minimum = insertion
			}
			if substitution < minimum {
				minimum = substitution
			}
			dp[i][j] = minimum
		}
	}
	return dp[rows-1][cols-1]
}
