package accuracy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMisaligned indicates the true and predicted tables cannot be compared
// positionally: a requested column is missing from one side, or the column
// lengths differ.
var ErrMisaligned = errors.New("tables are not aligned")

// Columns is a column-major table: column identifier to cell values.
type Columns map[string][]string

// ColumnsFromRows builds a column-major table from positional rows whose
// first row is the header. Short rows are padded with empty cells.
func ColumnsFromRows(rows [][]string) (Columns, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty table: %w", ErrMisaligned)
	}
	header := rows[0]
	columns := make(Columns, len(header))
	for colIndex, name := range header {
		name = strings.TrimSpace(name)
		values := make([]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			if colIndex < len(row) {
				values = append(values, row[colIndex])
			} else {
				values = append(values, "")
			}
		}
		columns[name] = values
	}
	return columns, nil
}

// TablePair is a ground-truth table and a predicted table assumed to be
// row-aligned. Alignment is validated per requested column at evaluation
// time.
type TablePair struct {
	// True is the authoritative, human-labeled table.
	True Columns

	// Pred is the extraction output being scored.
	Pred Columns
}

// column fetches one aligned column from both tables, enforcing presence
// and equal length.
func (pair TablePair) column(name string) ([]string, []string, error) {
	trueValues, ok := pair.True[name]
	if !ok {
		return nil, nil, fmt.Errorf("column %s missing from true table: %w", name, ErrMisaligned)
	}
	predValues, ok := pair.Pred[name]
	if !ok {
		return nil, nil, fmt.Errorf("column %s missing from predicted table: %w", name, ErrMisaligned)
	}
	if len(trueValues) != len(predValues) {
		return nil, nil, fmt.Errorf("column %s has %d true rows but %d predicted rows: %w",
			name, len(trueValues), len(predValues), ErrMisaligned)
	}
	return trueValues, predValues, nil
}

// DigitReport holds digit-level accuracy results for numeric columns.
type DigitReport struct {
	// Matched is the total number of matching digit positions.
	Matched int `json:"matched"`

	// Total is the total number of true-string positions scored.
	Total int `json:"total"`

	// Accuracy is Matched/Total; zero when Total is zero.
	Accuracy float64 `json:"accuracy"`

	// PerColumn maps column name to that column's accuracy.
	PerColumn map[string]float64 `json:"per_column"`

	// Confusion is the 10x10 digit confusion matrix accumulated across
	// all scored positions.
	Confusion *ConfusionMatrix `json:"confusion"`
}

// EvaluateDigits scores numeric columns digit by digit, accumulating the
// shared digit confusion matrix as it goes.
func EvaluateDigits(pair TablePair, numericColumns []string) (DigitReport, error) {
	report := DigitReport{
		PerColumn: make(map[string]float64, len(numericColumns)),
		Confusion: NewDigitConfusion(),
	}

	for _, column := range numericColumns {
		trueValues, predValues, err := pair.column(column)
		if err != nil {
			return DigitReport{}, err
		}

		columnMatched, columnTotal := 0, 0
		for i := range trueValues {
			matched, total := CompareDigits(trueValues[i], predValues[i], report.Confusion)
			columnMatched += matched
			columnTotal += total
		}
		report.Matched += columnMatched
		report.Total += columnTotal
		if columnTotal > 0 {
			report.PerColumn[column] = float64(columnMatched) / float64(columnTotal)
		} else {
			report.PerColumn[column] = 0
		}
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Matched) / float64(report.Total)
	}
	return report, nil
}

// TextColumnReport holds per-column text evaluation results.
type TextColumnReport struct {
	// Confusion is the column's character confusion matrix.
	Confusion *ConfusionMatrix `json:"confusion"`

	// ExactMatchRate is the fraction of rows equal after trimming and
	// lower-casing.
	ExactMatchRate float64 `json:"exact_match_rate"`

	// AvgLevenshtein is the mean edit distance across the column's rows.
	AvgLevenshtein Metric `json:"avg_levenshtein"`
}

// TextReport holds text evaluation results across columns.
type TextReport struct {
	// PerColumn maps column name to its report.
	PerColumn map[string]TextColumnReport `json:"per_column"`

	// Master is the character confusion matrix accumulated across all
	// text columns.
	Master *ConfusionMatrix `json:"master"`

	// AvgLevenshtein is the mean edit distance across every scored row
	// of every column.
	AvgLevenshtein Metric `json:"avg_levenshtein"`
}

// EvaluateText scores text columns: per-column character confusion plus a
// master matrix, exact-match rates, and average Levenshtein distances. An
// empty alphabet selects DefaultTextAlphabet.
func EvaluateText(pair TablePair, textColumns []string, alphabet string) (TextReport, error) {
	if alphabet == "" {
		alphabet = DefaultTextAlphabet
	}

	report := TextReport{
		PerColumn: make(map[string]TextColumnReport, len(textColumns)),
		Master:    NewConfusionMatrix(alphabet),
	}

	distanceSum, distanceCount := 0, 0
	for _, column := range textColumns {
		trueValues, predValues, err := pair.column(column)
		if err != nil {
			return TextReport{}, err
		}

		columnReport := TextColumnReport{Confusion: NewConfusionMatrix(alphabet)}
		exactMatches := 0
		columnDistance := 0
		for i := range trueValues {
			CompareChars(trueValues[i], predValues[i], columnReport.Confusion)
			CompareChars(trueValues[i], predValues[i], report.Master)

			if normalizeForExactMatch(trueValues[i]) == normalizeForExactMatch(predValues[i]) {
				exactMatches++
			}
			columnDistance += LevenshteinDistance(trueValues[i], predValues[i])
		}

		if len(trueValues) > 0 {
			columnReport.ExactMatchRate = float64(exactMatches) / float64(len(trueValues))
			columnReport.AvgLevenshtein = DefinedMetric(float64(columnDistance) / float64(len(trueValues)))
		} else {
			columnReport.AvgLevenshtein = UndefinedMetric()
		}
		report.PerColumn[column] = columnReport

		distanceSum += columnDistance
		distanceCount += len(trueValues)
	}

	if distanceCount > 0 {
		report.AvgLevenshtein = DefinedMetric(float64(distanceSum) / float64(distanceCount))
	} else {
		report.AvgLevenshtein = UndefinedMetric()
	}
	return report, nil
}

// normalizeForExactMatch trims surrounding whitespace and lower-cases.
func normalizeForExactMatch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ColumnErrorStats holds numeric error statistics for one column.
type ColumnErrorStats struct {
	// MAE is the mean absolute error; undefined with no valid samples.
	MAE Metric `json:"mae"`

	// MAPE is the mean absolute percentage error over rows with nonzero
	// true values; undefined with no such rows.
	MAPE Metric `json:"mape"`

	// AbsErrors is the raw list of absolute errors for distribution
	// reporting.
	AbsErrors []float64 `json:"abs_errors"`

	// SkippedRows counts rows where either value failed to parse.
	SkippedRows int `json:"skipped_rows"`
}

// ErrorReport holds numeric error statistics overall and per column.
type ErrorReport struct {
	// OverallMAE is the mean absolute error across all columns.
	OverallMAE Metric `json:"overall_mae"`

	// OverallMAPE is the mean absolute percentage error across all
	// columns.
	OverallMAPE Metric `json:"overall_mape"`

	// PerColumn maps column name to its statistics.
	PerColumn map[string]ColumnErrorStats `json:"per_column"`

	// SkippedRows counts rows skipped across all columns.
	SkippedRows int `json:"skipped_rows"`
}

// EvaluateNumericErrors computes MAE and MAPE for numeric columns. Values
// are parsed after stripping thousands separators and surrounding
// whitespace; rows where either side fails to parse are skipped and
// counted, never fatal. Columns with no valid samples report undefined
// metrics, not zero.
func EvaluateNumericErrors(pair TablePair, numericColumns []string) (ErrorReport, error) {
	report := ErrorReport{
		PerColumn: make(map[string]ColumnErrorStats, len(numericColumns)),
	}

	var overallAbs, overallPct []float64
	for _, column := range numericColumns {
		trueValues, predValues, err := pair.column(column)
		if err != nil {
			return ErrorReport{}, err
		}

		stats := ColumnErrorStats{}
		var pctErrors []float64
		for i := range trueValues {
			trueNum, err1 := parseNumeric(trueValues[i])
			predNum, err2 := parseNumeric(predValues[i])
			if err1 != nil || err2 != nil {
				stats.SkippedRows++
				continue
			}

			absError := predNum - trueNum
			if absError < 0 {
				absError = -absError
			}
			stats.AbsErrors = append(stats.AbsErrors, absError)
			overallAbs = append(overallAbs, absError)

			if trueNum != 0 {
				pct := absError / abs(trueNum)
				pctErrors = append(pctErrors, pct)
				overallPct = append(overallPct, pct)
			}
		}

		stats.MAE = mean(stats.AbsErrors)
		stats.MAPE = mean(pctErrors)
		report.PerColumn[column] = stats
		report.SkippedRows += stats.SkippedRows
	}

	report.OverallMAE = mean(overallAbs)
	report.OverallMAPE = mean(overallPct)
	return report, nil
}

// parseNumeric parses a numeric cell, tolerating thousands separators and
// surrounding whitespace.
func parseNumeric(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// mean returns the arithmetic mean, undefined for an empty sample.
func mean(samples []float64) Metric {
	if len(samples) == 0 {
		return UndefinedMetric()
	}
	sum := 0.0
	for _, sample := range samples {
		sum += sample
	}
	return DefinedMetric(sum / float64(len(samples)))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
