// Package extract turns page images of archival election results into
// CSV files using a vision model. Each image directory produced by the
// PDF converter becomes one CSV named after its source document.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/statline/electstats/pkg/pdfimg"
	"github.com/statline/electstats/pkg/table"
)

// DefaultModel is the vision model used for extraction.
const DefaultModel = "gemini-2.0-flash"

// maxResponseTokens caps the model output per page.
const maxResponseTokens = 2048

// yearInName matches a four-digit year embedded in a document name.
var yearInName = regexp.MustCompile(`(19|20)\d{2}`)

// PageExtractor converts one page image into CSV text. Implementations
// other than the Gemini client exist for testing.
type PageExtractor interface {
	ExtractPage(ctx context.Context, imageData []byte, mimeType, userPrompt string) (string, error)
}

// Config controls a directory extraction run.
type Config struct {
	// ImageDir holds one subdirectory of page images per document.
	ImageDir string

	// CSVDir receives one CSV file per document.
	CSVDir string

	// Format is the page image format produced by the converter.
	Format string

	// RaceType, when set, tailors the prompt to one contest type.
	RaceType string
}

// DefaultConfig returns a Config with standard settings.
func DefaultConfig(imageDir, csvDir string) Config {
	return Config{
		ImageDir: imageDir,
		CSVDir:   csvDir,
		Format:   pdfimg.DefaultFormat,
	}
}

// PageResult records the outcome for one page image.
type PageResult struct {
	// Image is the page image path.
	Image string

	// Err holds the extraction failure, if any.
	Err error
}

// DocumentResult records the outcome for one document directory.
type DocumentResult struct {
	// Name is the document directory name.
	Name string

	// CSVPath is the output CSV file.
	CSVPath string

	// Year is the election year detected in the document name, if any.
	Year string

	// Pages contains per-page outcomes in page order.
	Pages []PageResult
}

// Report summarizes a directory extraction run.
type Report struct {
	// Documents contains per-document outcomes.
	Documents []DocumentResult

	// PagesExtracted is the number of pages converted to CSV rows.
	PagesExtracted int

	// PagesFailed is the number of pages whose extraction failed.
	PagesFailed int
}

// Runner walks an image directory tree and extracts each document.
type Runner struct {
	config    Config
	extractor PageExtractor
	logger    *zap.Logger
}

// NewRunner creates a Runner using the given page extractor.
func NewRunner(config Config, extractor PageExtractor) *Runner {
	return &Runner{config: config, extractor: extractor, logger: zap.NewNop()}
}

// SetLogger replaces the no-op logger.
func (runner *Runner) SetLogger(logger *zap.Logger) {
	if logger != nil {
		runner.logger = logger
	}
}

// Run extracts every document directory under ImageDir. Page failures
// are recorded and skipped so one bad page does not lose a document.
func (runner *Runner) Run(ctx context.Context) (*Report, error) {
	entries, err := os.ReadDir(runner.config.ImageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory %s: %w", runner.config.ImageDir, err)
	}
	if err := os.MkdirAll(runner.config.CSVDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create CSV directory %s: %w", runner.config.CSVDir, err)
	}

	report := &Report{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		result, err := runner.extractDocument(ctx, entry.Name())
		if err != nil {
			return report, err
		}
		for _, page := range result.Pages {
			if page.Err != nil {
				report.PagesFailed++
			} else {
				report.PagesExtracted++
			}
		}
		report.Documents = append(report.Documents, *result)
	}

	return report, nil
}

// extractDocument processes one document directory into one CSV file.
// The file starts with the canonical header; each page's cleaned rows
// are appended in page order.
func (runner *Runner) extractDocument(ctx context.Context, name string) (*DocumentResult, error) {
	result := &DocumentResult{
		Name:    name,
		CSVPath: filepath.Join(runner.config.CSVDir, name+".csv"),
		Year:    yearInName.FindString(name),
	}

	pages, err := pdfimg.ListPageImages(filepath.Join(runner.config.ImageDir, name), runner.config.Format)
	if err != nil {
		return nil, err
	}

	output, err := os.Create(result.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", result.CSVPath, err)
	}
	defer output.Close()

	if _, err := output.WriteString(strings.Join(table.Columns(), ",") + "\n"); err != nil {
		return nil, fmt.Errorf("failed to write header to %s: %w", result.CSVPath, err)
	}

	userPrompt := CustomPrompt(result.Year, runner.config.RaceType)
	mimeType := "image/" + runner.config.Format

	for _, page := range pages {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		pageResult := PageResult{Image: page}
		imageData, err := os.ReadFile(page)
		if err != nil {
			pageResult.Err = err
			result.Pages = append(result.Pages, pageResult)
			continue
		}

		raw, err := runner.extractor.ExtractPage(ctx, imageData, mimeType, userPrompt)
		if err != nil {
			pageResult.Err = err
			result.Pages = append(result.Pages, pageResult)
			runner.logger.Warn("page extraction failed",
				zap.String("image", page),
				zap.Error(err))
			continue
		}

		cleaned := CleanResponse(raw)
		if cleaned != "" {
			if _, err := output.WriteString(cleaned + "\n"); err != nil {
				return result, fmt.Errorf("failed to append to %s: %w", result.CSVPath, err)
			}
		}
		result.Pages = append(result.Pages, pageResult)
		runner.logger.Info("extracted page",
			zap.String("image", page),
			zap.String("csv", result.CSVPath))
	}

	return result, nil
}

// CleanResponse strips markdown code fences and repeated header lines
// from a model reply, leaving only CSV data rows.
func CleanResponse(raw string) string {
	header := strings.Join(table.Columns(), ",")

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		if strings.EqualFold(trimmed, header) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n")
}
