// Package pdfimg converts archival PDF documents into page images
// suitable for vision-model extraction. Rasterization is delegated to
// the poppler pdftoppm tool.
package pdfimg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Default conversion settings.
const (
	// DefaultDPI balances digit legibility against image size.
	DefaultDPI = 200

	// DefaultFormat is the output image format.
	DefaultFormat = "png"

	// converterBinary is the poppler rasterizer invoked per PDF.
	converterBinary = "pdftoppm"
)

// supportedFormats are the pdftoppm output formats the converter accepts.
var supportedFormats = map[string]string{
	"png":  "-png",
	"jpeg": "-jpeg",
	"tiff": "-tiff",
}

// Config controls PDF-to-image conversion.
type Config struct {
	// InputDir holds the source PDFs.
	InputDir string

	// OutputDir receives one subdirectory of page images per PDF.
	OutputDir string

	// DPI is the rasterization resolution.
	DPI int

	// Format is the output image format: png, jpeg, or tiff.
	Format string
}

// DefaultConfig returns a Config with standard conversion settings.
func DefaultConfig(inputDir, outputDir string) Config {
	return Config{
		InputDir:  inputDir,
		OutputDir: outputDir,
		DPI:       DefaultDPI,
		Format:    DefaultFormat,
	}
}

// Validate checks the configuration for usable values.
func (config Config) Validate() error {
	if config.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if config.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if config.DPI <= 0 {
		return fmt.Errorf("invalid dpi %d", config.DPI)
	}
	if _, supported := supportedFormats[config.Format]; !supported {
		return fmt.Errorf("unsupported format %q (want png, jpeg, or tiff)", config.Format)
	}
	return nil
}

// FileResult records the conversion outcome for one PDF.
type FileResult struct {
	// PDF is the source file name.
	PDF string

	// ImageDir is the directory holding the page images.
	ImageDir string

	// Pages is the number of page images produced.
	Pages int

	// Err holds the conversion failure, if any.
	Err error
}

// Report summarizes a directory conversion run.
type Report struct {
	// Converted is the number of PDFs rasterized successfully.
	Converted int

	// Failed is the number of PDFs that could not be converted.
	Failed int

	// Files contains per-PDF outcomes in name order.
	Files []FileResult
}

// Converter rasterizes PDFs into page images.
type Converter struct {
	config Config
	logger *zap.Logger
}

// NewConverter creates a Converter with the given configuration.
func NewConverter(config Config) (*Converter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(converterBinary); err != nil {
		return nil, fmt.Errorf("%s not found on PATH (install poppler-utils): %w", converterBinary, err)
	}
	return &Converter{config: config, logger: zap.NewNop()}, nil
}

// SetLogger replaces the no-op logger.
func (converter *Converter) SetLogger(logger *zap.Logger) {
	if logger != nil {
		converter.logger = logger
	}
}

// ConvertDir rasterizes every PDF in the input directory. Per-file
// failures are recorded in the report rather than aborting the run.
func (converter *Converter) ConvertDir(ctx context.Context) (*Report, error) {
	entries, err := os.ReadDir(converter.config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", converter.config.InputDir, err)
	}

	report := &Report{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		result := converter.convertFile(ctx, entry.Name())
		if result.Err != nil {
			report.Failed++
			converter.logger.Warn("conversion failed",
				zap.String("pdf", entry.Name()),
				zap.Error(result.Err))
		} else {
			report.Converted++
			converter.logger.Info("converted pdf",
				zap.String("pdf", entry.Name()),
				zap.Int("pages", result.Pages))
		}
		report.Files = append(report.Files, result)
	}

	return report, nil
}

// convertFile rasterizes one PDF into OutputDir/<stem>/page-N.<format>.
func (converter *Converter) convertFile(ctx context.Context, name string) FileResult {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	imageDir := filepath.Join(converter.config.OutputDir, stem)
	result := FileResult{PDF: name, ImageDir: imageDir}

	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		result.Err = fmt.Errorf("failed to create image directory: %w", err)
		return result
	}

	pdfPath := filepath.Join(converter.config.InputDir, name)
	outputPrefix := filepath.Join(imageDir, "page")

	cmd := exec.CommandContext(ctx, converterBinary,
		supportedFormats[converter.config.Format],
		"-r", fmt.Sprintf("%d", converter.config.DPI),
		pdfPath, outputPrefix)
	if output, err := cmd.CombinedOutput(); err != nil {
		result.Err = fmt.Errorf("%s failed for %s: %w: %s",
			converterBinary, name, err, strings.TrimSpace(string(output)))
		return result
	}

	pages, err := ListPageImages(imageDir, converter.config.Format)
	if err != nil {
		result.Err = err
		return result
	}
	result.Pages = len(pages)
	if result.Pages == 0 {
		result.Err = fmt.Errorf("%s produced no pages for %s", converterBinary, name)
	}
	return result
}

// ListPageImages returns the page image paths for one converted PDF, in
// page order. pdftoppm zero-pads page numbers so lexical order is page
// order.
func ListPageImages(imageDir, format string) ([]string, error) {
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory %s: %w", imageDir, err)
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}

	var pages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), "page") && strings.HasSuffix(entry.Name(), ext) {
			pages = append(pages, filepath.Join(imageDir, entry.Name()))
		}
	}
	sort.Strings(pages)
	return pages, nil
}
