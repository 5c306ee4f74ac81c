package dashboard

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/statline/electstats/pkg/table"
)

// yearInFile matches the election year embedded in a CSV file name.
var yearInFile = regexp.MustCompile(`(19|20)\d{2}`)

// Store locates and loads per-year election CSVs from a directory.
// Results are recomputed from disk on every request; nothing is cached.
type Store struct {
	csvDir string
}

// NewStore creates a Store over the given CSV directory.
func NewStore(csvDir string) *Store {
	return &Store{csvDir: csvDir}
}

// Years lists the election years present in the CSV directory, sorted
// ascending. Cleaned (sorted_ prefixed) and raw files count equally.
func (store *Store) Years() ([]string, error) {
	entries, err := os.ReadDir(store.csvDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV directory %s: %w", store.csvDir, err)
	}

	seen := make(map[string]bool)
	var years []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		year := yearInFile.FindString(entry.Name())
		if year == "" || seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	sort.Strings(years)
	return years, nil
}

// fileForYear picks the CSV file for a year, preferring a cleaned
// sorted_ file over the raw extraction.
func (store *Store) fileForYear(year string) (string, error) {
	entries, err := os.ReadDir(store.csvDir)
	if err != nil {
		return "", fmt.Errorf("failed to read CSV directory %s: %w", store.csvDir, err)
	}

	var raw string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if yearInFile.FindString(name) != year {
			continue
		}
		if strings.HasPrefix(name, "sorted_") {
			return filepath.Join(store.csvDir, name), nil
		}
		if raw == "" {
			raw = filepath.Join(store.csvDir, name)
		}
	}
	if raw == "" {
		return "", os.ErrNotExist
	}
	return raw, nil
}

// Load reads and normalizes the records for one year. The returned
// error wraps os.ErrNotExist, table.ErrNoHeader, or table.ErrNoData so
// handlers can map each to its own response.
func (store *Store) Load(year string) ([]table.Record, error) {
	sourceYear, err := strconv.Atoi(year)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q: %w", year, os.ErrNotExist)
	}

	path, err := store.fileForYear(year)
	if err != nil {
		return nil, fmt.Errorf("no data file for year %s: %w", year, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := table.ReadRaw(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	scan := table.ScanHeader(rows)
	if !scan.Found {
		return nil, fmt.Errorf("unexpected format in %s: %w", filepath.Base(path), table.ErrNoHeader)
	}

	result, err := table.Normalize(rows, scan, sourceYear)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", filepath.Base(path), err)
	}
	return result.Records, nil
}
