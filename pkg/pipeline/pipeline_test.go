package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// cannedExtractor returns the same CSV rows for every page.
type cannedExtractor struct {
	reply string
	calls int
}

func (canned *cannedExtractor) ExtractPage(ctx context.Context, imageData []byte, mimeType, userPrompt string) (string, error) {
	canned.calls++
	return canned.reply, nil
}

func TestDefaultConfigWiresStagesTogether(t *testing.T) {
	config := DefaultConfig("https://example.gov/elections/", "data")

	if config.Scrape.OutputDir != config.Convert.InputDir {
		t.Error("scrape output should feed the converter")
	}
	if config.Convert.OutputDir != config.Extract.ImageDir {
		t.Error("converter output should feed the extractor")
	}
	if config.Extract.CSVDir != config.Clean.InputDir {
		t.Error("extractor output should feed the cleaner")
	}
}

func TestPipelineExtractAndClean(t *testing.T) {
	dataDir := t.TempDir()
	config := DefaultConfig("", dataDir)
	config.SkipScrape = true
	config.SkipConvert = true

	// Stand in for the convert stage: one document with two pages.
	docDir := filepath.Join(config.Extract.ImageDir, "election_1932")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, page := range []string{"page-01.png", "page-02.png"} {
		if err := os.WriteFile(filepath.Join(docDir, page), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	extractor := &cannedExtractor{
		reply: "OHIO,1932,HOUSE,2,SMITH,REPUBLICAN,1200\nIOWA,1932,HOUSE,1,JONES,DEMOCRAT,\"2,500\"",
	}

	report, err := New(config, extractor).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Scrape != nil || report.Convert != nil {
		t.Error("skipped stages should have nil reports")
	}
	if len(report.Timings) != 2 || report.Timings[0].Stage != "extract" || report.Timings[1].Stage != "clean" {
		t.Errorf("expected extract and clean timings, got %+v", report.Timings)
	}
	if extractor.calls != 2 {
		t.Errorf("expected 2 extractor calls, got %d", extractor.calls)
	}
	if report.Extract == nil || report.Extract.PagesExtracted != 2 {
		t.Fatalf("unexpected extract report: %+v", report.Extract)
	}
	if report.Clean == nil || len(report.Clean.Processed) != 1 {
		t.Fatalf("unexpected clean report: %+v", report.Clean)
	}

	sortedPath := filepath.Join(dataDir, "csv", "sorted_election_1932.csv")
	data, err := os.ReadFile(sortedPath)
	if err != nil {
		t.Fatalf("cleaned CSV missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus four data rows, sorted by state: IOWA before OHIO.
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[1], "IOWA") || !strings.HasPrefix(lines[3], "OHIO") {
		t.Errorf("rows not sorted by state: %v", lines[1:])
	}
	if !strings.Contains(lines[1], "2500") {
		t.Errorf("vote scrubbing missed comma grouping: %s", lines[1])
	}
}

func TestPipelineRequiresExtractor(t *testing.T) {
	config := DefaultConfig("", t.TempDir())
	config.SkipScrape = true
	config.SkipConvert = true

	if err := os.MkdirAll(config.Extract.ImageDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := New(config, nil).Run(context.Background()); err == nil {
		t.Error("expected error when extract stage has no extractor")
	}
}
