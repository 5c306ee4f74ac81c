// Package pipeline chains scraping, PDF conversion, vision extraction,
// and CSV cleaning into one run, with each stage individually
// skippable.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/statline/electstats/pkg/clean"
	"github.com/statline/electstats/pkg/extract"
	"github.com/statline/electstats/pkg/pdfimg"
	"github.com/statline/electstats/pkg/scrape"
)

// Config controls which stages run and where their data lives.
type Config struct {
	// Scrape configures the PDF discovery stage.
	Scrape scrape.Config

	// Convert configures the PDF-to-image stage.
	Convert pdfimg.Config

	// Extract configures the image-to-CSV stage.
	Extract extract.Config

	// Clean configures the CSV cleaning stage.
	Clean clean.Config

	// SkipScrape skips PDF discovery, reusing PDFs already on disk.
	SkipScrape bool

	// SkipConvert skips rasterization, reusing existing page images.
	SkipConvert bool

	// SkipExtract skips the vision model, reusing existing CSVs.
	SkipExtract bool

	// SkipClean leaves extracted CSVs unsorted.
	SkipClean bool
}

// DefaultConfig wires the four stages through a common data directory:
// dataDir/pdfs -> dataDir/images -> dataDir/csv (extracted and cleaned
// in place, cleaned files carrying the sorted_ prefix).
func DefaultConfig(startURL, dataDir string) Config {
	pdfDir := filepath.Join(dataDir, "pdfs")
	imageDir := filepath.Join(dataDir, "images")
	csvDir := filepath.Join(dataDir, "csv")

	return Config{
		Scrape:  scrape.DefaultConfig(startURL, pdfDir),
		Convert: pdfimg.DefaultConfig(pdfDir, imageDir),
		Extract: extract.DefaultConfig(imageDir, csvDir),
		Clean:   clean.DefaultConfig(csvDir, csvDir),
	}
}

// Report collects the per-stage reports of one pipeline run. A nil
// stage report means the stage was skipped.
type Report struct {
	Scrape  *scrape.Report  `json:"scrape,omitempty"`
	Convert *pdfimg.Report  `json:"convert,omitempty"`
	Extract *extract.Report `json:"extract,omitempty"`
	Clean   *clean.Report   `json:"clean,omitempty"`

	// Timings holds one entry per executed stage, in execution order.
	Timings []StageTiming `json:"timings"`
}

// StageTiming records how long one stage ran.
type StageTiming struct {
	Stage   string        `json:"stage"`
	Elapsed time.Duration `json:"elapsed"`
}

// recordTiming appends a stage timing in execution order.
func (report *Report) recordTiming(stage string, start time.Time) {
	report.Timings = append(report.Timings, StageTiming{Stage: stage, Elapsed: time.Since(start)})
}

// Pipeline runs the stages in order.
type Pipeline struct {
	config    Config
	extractor extract.PageExtractor
	logger    *zap.Logger
}

// New creates a Pipeline. The extractor may be nil when SkipExtract is
// set.
func New(config Config, extractor extract.PageExtractor) *Pipeline {
	return &Pipeline{config: config, extractor: extractor, logger: zap.NewNop()}
}

// SetLogger replaces the no-op logger. The same logger is handed to
// every stage.
func (pipeline *Pipeline) SetLogger(logger *zap.Logger) {
	if logger != nil {
		pipeline.logger = logger
	}
}

// Run executes the enabled stages in order: scrape, convert, extract,
// clean. The first stage error aborts the run; the partial report is
// returned alongside it.
func (pipeline *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if pipeline.config.SkipScrape {
		pipeline.logger.Info("skipping scrape stage")
	} else {
		pipeline.logger.Info("scraping PDFs",
			zap.String("url", pipeline.config.Scrape.StartURL))
		start := time.Now()
		scraper := scrape.NewScraper(pipeline.config.Scrape)
		scraper.SetLogger(pipeline.logger)
		scrapeReport, err := scraper.Run(ctx)
		report.Scrape = scrapeReport
		report.recordTiming("scrape", start)
		if err != nil {
			return report, fmt.Errorf("scrape stage failed: %w", err)
		}
	}

	if pipeline.config.SkipConvert {
		pipeline.logger.Info("skipping convert stage")
	} else {
		pipeline.logger.Info("converting PDFs to images",
			zap.String("input", pipeline.config.Convert.InputDir))
		converter, err := pdfimg.NewConverter(pipeline.config.Convert)
		if err != nil {
			return report, fmt.Errorf("convert stage failed: %w", err)
		}
		converter.SetLogger(pipeline.logger)
		start := time.Now()
		convertReport, err := converter.ConvertDir(ctx)
		report.Convert = convertReport
		report.recordTiming("convert", start)
		if err != nil {
			return report, fmt.Errorf("convert stage failed: %w", err)
		}
	}

	if pipeline.config.SkipExtract {
		pipeline.logger.Info("skipping extract stage")
	} else {
		if pipeline.extractor == nil {
			return report, fmt.Errorf("extract stage requires a page extractor")
		}
		pipeline.logger.Info("extracting election data from images",
			zap.String("input", pipeline.config.Extract.ImageDir))
		runner := extract.NewRunner(pipeline.config.Extract, pipeline.extractor)
		runner.SetLogger(pipeline.logger)
		start := time.Now()
		extractReport, err := runner.Run(ctx)
		report.Extract = extractReport
		report.recordTiming("extract", start)
		if err != nil {
			return report, fmt.Errorf("extract stage failed: %w", err)
		}
	}

	if pipeline.config.SkipClean {
		pipeline.logger.Info("skipping clean stage")
	} else {
		pipeline.logger.Info("cleaning and sorting CSVs",
			zap.String("input", pipeline.config.Clean.InputDir))
		start := time.Now()
		cleanReport, err := clean.ProcessDir(pipeline.config.Clean)
		report.Clean = &cleanReport
		report.recordTiming("clean", start)
		if err != nil {
			return report, fmt.Errorf("clean stage failed: %w", err)
		}
	}

	pipeline.logger.Info("pipeline complete")
	return report, nil
}
