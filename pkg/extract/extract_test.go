package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubReply is one canned extractor outcome.
type stubReply struct {
	text string
	err  error
}

// stubExtractor serves canned replies in page order. The runner visits
// pages in sorted order, so the queue position identifies the page.
type stubExtractor struct {
	replies []stubReply
	prompts []string
}

func (stub *stubExtractor) ExtractPage(ctx context.Context, imageData []byte, mimeType, userPrompt string) (string, error) {
	stub.prompts = append(stub.prompts, userPrompt)
	if len(stub.replies) == 0 {
		return "", fmt.Errorf("no stubbed reply")
	}
	reply := stub.replies[0]
	stub.replies = stub.replies[1:]
	return reply.text, reply.err
}

func TestCustomPrompt(t *testing.T) {
	base := CustomPrompt("", "")
	if base != UserPrompt {
		t.Error("empty arguments should leave the base prompt unchanged")
	}

	withYear := CustomPrompt("1932", "")
	if !strings.Contains(withYear, "1932 election year") {
		t.Error("year hint missing from prompt")
	}

	senate := CustomPrompt("", "Senate")
	if !strings.Contains(senate, "Senate races do not have congressional districts") {
		t.Error("senate hint missing from prompt")
	}

	house := CustomPrompt("1950", "house")
	if !strings.Contains(house, "congressional district numbers") || !strings.Contains(house, "1950") {
		t.Error("house prompt should carry both year and district hints")
	}
}

func TestCleanResponse(t *testing.T) {
	raw := "```csv\n" +
		"STATE,YEAR,RACE_TYPE,CONGRESSIONAL_DISTRICT,CANDIDATE_NAME,CANDIDATE_PARTY,VOTES\n" +
		"Iowa,1932,House,1,SWANSON,Republican,51218\n" +
		"\n" +
		"Iowa,1932,House,2,EICHER,Democrat,56800\n" +
		"```"

	cleaned := CleanResponse(raw)
	lines := strings.Split(cleaned, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 data rows, got %d: %q", len(lines), cleaned)
	}
	if !strings.HasPrefix(lines[0], "Iowa,1932,House,1") {
		t.Errorf("unexpected first row: %s", lines[0])
	}
}

func TestCleanResponseEmptyReply(t *testing.T) {
	if got := CleanResponse("```\n```"); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestRunnerWritesDocumentCSV(t *testing.T) {
	imageDir := t.TempDir()
	csvDir := t.TempDir()

	docDir := filepath.Join(imageDir, "election_1932")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docDir, "page-01.png"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}

	stub := &stubExtractor{replies: []stubReply{
		{text: "Iowa,1932,House,1,SWANSON,Republican,51218"},
	}}

	runner := NewRunner(DefaultConfig(imageDir, csvDir), stub)
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.PagesExtracted != 1 || report.PagesFailed != 0 {
		t.Errorf("unexpected counts: extracted=%d failed=%d", report.PagesExtracted, report.PagesFailed)
	}
	if len(report.Documents) != 1 || report.Documents[0].Year != "1932" {
		t.Fatalf("unexpected documents: %+v", report.Documents)
	}

	data, err := os.ReadFile(filepath.Join(csvDir, "election_1932.csv"))
	if err != nil {
		t.Fatalf("output CSV missing: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "STATE,YEAR,RACE_TYPE,CONGRESSIONAL_DISTRICT,CANDIDATE_NAME,CANDIDATE_PARTY,VOTES\n") {
		t.Error("output CSV missing canonical header")
	}
	if !strings.Contains(content, "SWANSON") {
		t.Error("output CSV missing extracted row")
	}

	// The document name carries a year, so the prompt should too.
	if len(stub.prompts) != 1 || !strings.Contains(stub.prompts[0], "1932 election year") {
		t.Error("year-tailored prompt not used")
	}
}

func TestRunnerAppendsPagesInOrder(t *testing.T) {
	imageDir := t.TempDir()
	csvDir := t.TempDir()

	docDir := filepath.Join(imageDir, "election_1932")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, page := range []string{"page-01.png", "page-02.png"} {
		if err := os.WriteFile(filepath.Join(docDir, page), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	stub := &stubExtractor{replies: []stubReply{
		{text: "Iowa,1932,House,1,SWANSON,Republican,51218"},
		{text: "Ohio,1932,House,2,EICHER,Democrat,56800"},
	}}

	runner := NewRunner(DefaultConfig(imageDir, csvDir), stub)
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(csvDir, "election_1932.csv"))
	if err != nil {
		t.Fatalf("output CSV missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "SWANSON") || !strings.Contains(lines[2], "EICHER") {
		t.Errorf("rows out of page order: %v", lines[1:])
	}
}

func TestRunnerRecordsPageFailures(t *testing.T) {
	imageDir := t.TempDir()
	csvDir := t.TempDir()

	docDir := filepath.Join(imageDir, "results")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docDir, "page-01.png"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}

	stub := &stubExtractor{replies: []stubReply{
		{err: fmt.Errorf("model unavailable")},
	}}

	runner := NewRunner(DefaultConfig(imageDir, csvDir), stub)
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.PagesFailed != 1 {
		t.Errorf("expected 1 failed page, got %d", report.PagesFailed)
	}

	// The CSV still exists with its header so later stages see the file.
	data, err := os.ReadFile(filepath.Join(csvDir, "results.csv"))
	if err != nil {
		t.Fatalf("output CSV missing: %v", err)
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Errorf("expected header-only CSV, got %q", string(data))
	}
}
