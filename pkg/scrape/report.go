package scrape

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ItemStatus describes the outcome of one download attempt.
type ItemStatus string

const (
	ItemDownloaded ItemStatus = "downloaded"
	ItemSkipped    ItemStatus = "skipped"
	ItemFailed     ItemStatus = "failed"
)

// Item records the outcome for one discovered PDF URL.
type Item struct {
	// URL is the absolute PDF URL.
	URL string `json:"url"`

	// Year is the election year extracted from the URL, if any.
	Year string `json:"year,omitempty"`

	// Path is the local file the PDF was saved to.
	Path string `json:"path,omitempty"`

	// Status is whether the download succeeded, was skipped, or failed.
	Status ItemStatus `json:"status"`

	// Error holds the failure or skip reason.
	Error string `json:"error,omitempty"`
}

// Report contains the results and statistics of a completed scrape.
type Report struct {
	// StartURL is the seed page the crawl began from.
	StartURL string `json:"start_url"`

	// PagesVisited is the number of HTML pages fetched.
	PagesVisited int `json:"pages_visited"`

	// PDFsFound is the number of unique PDF URLs discovered.
	PDFsFound int `json:"pdfs_found"`

	// Downloaded is the number of PDFs saved to disk.
	Downloaded int `json:"downloaded"`

	// Skipped is the number of PDFs rejected by validation.
	Skipped int `json:"skipped"`

	// Failed is the number of PDFs that could not be fetched.
	Failed int `json:"failed"`

	// YearPages maps discovered election years to the page carrying them.
	YearPages map[string]string `json:"year_pages"`

	// Items contains per-PDF download outcomes.
	Items []*Item `json:"items"`
}

// NewReport creates an empty report for a crawl seeded at startURL.
func NewReport(startURL string) *Report {
	return &Report{
		StartURL:  startURL,
		YearPages: make(map[string]string),
		Items:     make([]*Item, 0),
	}
}

// RecordItem adds a download outcome and updates the counters.
func (report *Report) RecordItem(item *Item) {
	report.Items = append(report.Items, item)
	switch item.Status {
	case ItemDownloaded:
		report.Downloaded++
	case ItemSkipped:
		report.Skipped++
	case ItemFailed:
		report.Failed++
	}
}

// FormatJSON renders the report as indented JSON.
func (report *Report) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal scrape report: %w", err)
	}
	return string(data), nil
}

// FormatTable renders a human-readable summary.
func (report *Report) FormatTable() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Scrape of %s\n", report.StartURL))
	builder.WriteString(fmt.Sprintf("  Pages visited: %d\n", report.PagesVisited))
	builder.WriteString(fmt.Sprintf("  PDFs found:    %d\n", report.PDFsFound))
	builder.WriteString(fmt.Sprintf("  Downloaded:    %d\n", report.Downloaded))
	builder.WriteString(fmt.Sprintf("  Skipped:       %d\n", report.Skipped))
	builder.WriteString(fmt.Sprintf("  Failed:        %d\n", report.Failed))

	if len(report.YearPages) > 0 {
		years := make([]string, 0, len(report.YearPages))
		for year := range report.YearPages {
			years = append(years, year)
		}
		sort.Strings(years)
		builder.WriteString(fmt.Sprintf("  Years seen:    %s\n", strings.Join(years, ", ")))
	}

	for _, item := range report.Items {
		line := fmt.Sprintf("  [%s] %s", item.Status, item.URL)
		if item.Path != "" {
			line += " -> " + item.Path
		}
		if item.Error != "" {
			line += " (" + item.Error + ")"
		}
		builder.WriteString(line + "\n")
	}

	return builder.String()
}
