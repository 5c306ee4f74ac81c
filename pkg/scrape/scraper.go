package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Scraper crawls a government statistics site breadth-first, collecting
// PDF URLs as it goes, then downloads each discovered document into the
// configured output directory.
type Scraper struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewScraper creates a Scraper with the given configuration.
func NewScraper(config Config) *Scraper {
	return &Scraper{
		config: config,
		httpClient: &http.Client{
			Timeout: config.PageTimeout,
		},
		logger: zap.NewNop(),
	}
}

// SetLogger replaces the no-op logger.
func (scraper *Scraper) SetLogger(logger *zap.Logger) {
	if logger != nil {
		scraper.logger = logger
	}
}

// Run performs the full crawl-then-download cycle. The crawl stops when
// the frontier empties, MaxPages is reached, or ctx is cancelled.
func (scraper *Scraper) Run(ctx context.Context) (*Report, error) {
	report := NewReport(scraper.config.StartURL)

	pdfURLs, err := scraper.crawl(ctx, report)
	if err != nil {
		return report, err
	}
	report.PDFsFound = len(pdfURLs)

	if err := os.MkdirAll(scraper.config.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("failed to create output directory %s: %w", scraper.config.OutputDir, err)
	}

	for _, pdfURL := range pdfURLs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		scraper.download(ctx, pdfURL, report)
		scraper.pause(ctx)
	}

	return report, nil
}

// crawl walks same-domain pages breadth-first from the start URL and
// returns the unique PDF URLs found, in discovery order.
func (scraper *Scraper) crawl(ctx context.Context, report *Report) ([]string, error) {
	startURL, err := url.Parse(scraper.config.StartURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %s: %w", scraper.config.StartURL, err)
	}
	baseDomain := startURL.Scheme + "://" + startURL.Host

	frontier := []string{scraper.config.StartURL}
	visited := make(map[string]bool)
	pdfSeen := make(map[string]bool)
	var pdfURLs []string

	for len(frontier) > 0 && report.PagesVisited < scraper.config.MaxPages {
		if ctx.Err() != nil {
			return pdfURLs, ctx.Err()
		}

		pageURL := frontier[0]
		frontier = frontier[1:]
		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		doc, finalURL, err := scraper.fetchPage(ctx, pageURL)
		if err != nil {
			scraper.logger.Warn("failed to fetch page",
				zap.String("url", pageURL),
				zap.Error(err))
			continue
		}
		report.PagesVisited++
		scraper.logger.Info("visited page",
			zap.String("url", pageURL),
			zap.Int("pages_visited", report.PagesVisited))

		links := ExtractLinks(finalURL, baseDomain, doc)
		for _, pdfURL := range links.PDFs {
			if pdfSeen[pdfURL] {
				continue
			}
			pdfSeen[pdfURL] = true
			pdfURLs = append(pdfURLs, pdfURL)
			scraper.logger.Info("found pdf", zap.String("url", pdfURL))
		}
		for year, page := range links.YearPages {
			if _, present := report.YearPages[year]; !present {
				report.YearPages[year] = page
			}
		}
		for _, page := range links.Pages {
			if !visited[page] {
				frontier = append(frontier, page)
			}
		}

		scraper.pause(ctx)
	}

	return pdfURLs, nil
}

// fetchPage retrieves and parses one HTML page. The returned URL is the
// final URL after redirects, used to resolve relative links.
func (scraper *Scraper) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request for %s: %w", pageURL, err)
	}
	request.Header.Set("User-Agent", scraper.config.UserAgent)

	response, err := scraper.httpClient.Do(request)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d for %s", response.StatusCode, pageURL)
	}

	contentType := response.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, nil, fmt.Errorf("non-HTML content type %q for %s", contentType, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	return doc, response.Request.URL, nil
}

// download fetches one PDF and writes it to the output directory,
// recording the outcome in the report.
func (scraper *Scraper) download(ctx context.Context, pdfURL string, report *Report) {
	item := &Item{URL: pdfURL}
	if year, ok := ExtractYear(pdfURL); ok {
		item.Year = year
	}

	downloadClient := &http.Client{Timeout: scraper.config.DownloadTimeout}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		item.Status = ItemFailed
		item.Error = err.Error()
		report.RecordItem(item)
		return
	}
	request.Header.Set("User-Agent", scraper.config.UserAgent)

	response, err := downloadClient.Do(request)
	if err != nil {
		item.Status = ItemFailed
		item.Error = err.Error()
		report.RecordItem(item)
		scraper.logger.Warn("download failed", zap.String("url", pdfURL), zap.Error(err))
		return
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		item.Status = ItemFailed
		item.Error = fmt.Sprintf("unexpected status %d", response.StatusCode)
		report.RecordItem(item)
		return
	}

	contentType := response.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "pdf") &&
		!strings.Contains(contentType, "octet-stream") {
		item.Status = ItemSkipped
		item.Error = fmt.Sprintf("non-PDF content type %q", contentType)
		report.RecordItem(item)
		return
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		item.Status = ItemFailed
		item.Error = err.Error()
		report.RecordItem(item)
		return
	}
	if len(data) < scraper.config.MinPDFSize {
		item.Status = ItemSkipped
		item.Error = fmt.Sprintf("too small (%d bytes)", len(data))
		report.RecordItem(item)
		return
	}

	path := scraper.outputPath(pdfURL, item.Year)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		item.Status = ItemFailed
		item.Error = err.Error()
		report.RecordItem(item)
		return
	}

	item.Status = ItemDownloaded
	item.Path = path
	report.RecordItem(item)
	scraper.logger.Info("downloaded pdf",
		zap.String("url", pdfURL),
		zap.String("path", path),
		zap.Int("bytes", len(data)))
}

// outputPath picks a non-colliding filename for a PDF. Files with a
// detectable year are named <year>.pdf; otherwise the URL's base name
// is used.
func (scraper *Scraper) outputPath(pdfURL, year string) string {
	var base string
	if year != "" {
		base = year
	} else {
		parsed, err := url.Parse(pdfURL)
		if err == nil {
			base = strings.TrimSuffix(filepath.Base(parsed.Path), ".pdf")
		}
		if base == "" || base == "." || base == "/" {
			base = "document"
		}
	}

	path := filepath.Join(scraper.config.OutputDir, base+".pdf")
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(scraper.config.OutputDir, fmt.Sprintf("%s_%d.pdf", base, counter))
	}
}

// pause sleeps for the rate limit interval, returning early on
// cancellation.
func (scraper *Scraper) pause(ctx context.Context) {
	if scraper.config.RateLimit <= 0 {
		return
	}
	timer := time.NewTimer(scraper.config.RateLimit)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
