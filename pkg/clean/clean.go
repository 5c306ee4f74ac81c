// Package clean batch-processes extracted election CSV files: it scrubs
// column names and vote counts, sorts rows, and writes the cleaned copies
// alongside the originals with a "sorted_" prefix.
package clean

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/statline/electstats/pkg/table"
)

// DefaultSkipPrefix marks output files so a second pass does not reprocess
// its own products.
const DefaultSkipPrefix = "sorted_"

// Config holds batch processing settings.
type Config struct {
	// InputDir is the directory scanned for *.csv files.
	InputDir string

	// OutputDir receives the cleaned files. Created if missing.
	OutputDir string

	// SortColumns are applied in order when all are present in a file.
	SortColumns []string

	// SkipPrefix marks files to leave alone.
	SkipPrefix string
}

// DefaultConfig returns the standard cleaning configuration: sort by state
// then district, skip prior outputs.
func DefaultConfig(inputDir, outputDir string) Config {
	return Config{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		SortColumns: []string{table.ColumnState, table.ColumnDistrict},
		SkipPrefix:  DefaultSkipPrefix,
	}
}

// Report lists the files that were processed and the files that failed.
// Individual failures do not abort the batch.
type Report struct {
	// Processed are input file names cleaned successfully.
	Processed []string `json:"processed"`

	// Failed are input file names that could not be cleaned, with the
	// reason.
	Failed []FailedFile `json:"failed,omitempty"`
}

// FailedFile pairs a file name with the reason it was skipped.
type FailedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

var nonDigits = regexp.MustCompile(`[^\d]`)

// ProcessDir cleans every CSV file in cfg.InputDir not carrying the skip
// prefix and writes sorted copies into cfg.OutputDir.
func ProcessDir(cfg Config) (Report, error) {
	info, err := os.Stat(cfg.InputDir)
	if err != nil {
		return Report{}, fmt.Errorf("input folder not found: %w", err)
	}
	if !info.IsDir() {
		return Report{}, fmt.Errorf("input path is not a directory: %s", cfg.InputDir)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("cannot create output directory %s: %w", cfg.OutputDir, err)
	}

	entries, err := os.ReadDir(cfg.InputDir)
	if err != nil {
		return Report{}, fmt.Errorf("cannot list input directory %s: %w", cfg.InputDir, err)
	}

	report := Report{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if cfg.SkipPrefix != "" && strings.HasPrefix(name, cfg.SkipPrefix) {
			continue
		}

		outputPath := filepath.Join(cfg.OutputDir, cfg.SkipPrefix+name)
		if err := processFile(filepath.Join(cfg.InputDir, name), outputPath, cfg.SortColumns); err != nil {
			report.Failed = append(report.Failed, FailedFile{Name: name, Reason: err.Error()})
			continue
		}
		report.Processed = append(report.Processed, name)
	}

	sort.Strings(report.Processed)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Name < report.Failed[j].Name })
	return report, nil
}

// processFile cleans a single CSV file: header names are trimmed, VOTES is
// scrubbed to a bare integer (empty scrub result becomes 0), and rows are
// sorted by the requested columns when they all exist.
func processFile(inputPath, outputPath string, sortColumns []string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", inputPath, err)
	}
	defer file.Close()

	rows, err := table.ReadRaw(file)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: empty file", filepath.Base(inputPath))
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	data := rows[1:]

	columnIndex := make(map[string]int, len(header))
	for i, name := range header {
		columnIndex[name] = i
	}

	if votesCol, ok := columnIndex[table.ColumnVotes]; ok {
		for _, row := range data {
			if votesCol >= len(row) {
				continue
			}
			row[votesCol] = scrubVotes(row[votesCol])
		}
	}

	if indexes, ok := sortIndexes(columnIndex, sortColumns); ok {
		sort.SliceStable(data, func(i, j int) bool {
			return lessByColumns(data[i], data[j], indexes)
		})
	}

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", outputPath, err)
	}
	defer output.Close()

	writer := csv.NewWriter(output)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write header: %w", err)
	}
	for _, row := range data {
		// Pad ragged rows to the header arity so the output is rectangular.
		for len(row) < len(header) {
			row = append(row, "")
		}
		if err := writer.Write(row[:len(header)]); err != nil {
			return fmt.Errorf("cannot write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// scrubVotes strips everything but digits; an empty result becomes "0".
func scrubVotes(value string) string {
	digits := nonDigits.ReplaceAllString(value, "")
	if digits == "" {
		return "0"
	}
	// Normalize leading zeros through a round trip.
	parsed, err := strconv.Atoi(digits)
	if err != nil {
		return "0"
	}
	return strconv.Itoa(parsed)
}

// sortIndexes resolves sort column names to indexes; reports false unless
// every requested column is present.
func sortIndexes(columnIndex map[string]int, sortColumns []string) ([]int, bool) {
	if len(sortColumns) == 0 {
		return nil, false
	}
	indexes := make([]int, 0, len(sortColumns))
	for _, name := range sortColumns {
		index, ok := columnIndex[name]
		if !ok {
			return nil, false
		}
		indexes = append(indexes, index)
	}
	return indexes, true
}

// lessByColumns compares two rows by the given column indexes in order.
func lessByColumns(a, b []string, indexes []int) bool {
	for _, index := range indexes {
		valueA, valueB := "", ""
		if index < len(a) {
			valueA = a[index]
		}
		if index < len(b) {
			valueB = b[index]
		}
		if valueA != valueB {
			return valueA < valueB
		}
	}
	return false
}
