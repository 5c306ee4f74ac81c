// Package scrape provides a polite BFS web crawler that discovers and
// downloads archival election-statistics PDF documents, naming each file
// after the election year found in its URL.
package scrape

import "time"

// Default configuration values for the scraper.
const (
	// DefaultMaxPages caps the number of pages visited per crawl.
	DefaultMaxPages = 100

	// DefaultRateLimit is the minimum interval between HTTP requests.
	DefaultRateLimit = 750 * time.Millisecond

	// DefaultPageTimeout is the per-page HTTP timeout.
	DefaultPageTimeout = 30 * time.Second

	// DefaultDownloadTimeout is the per-PDF HTTP timeout.
	DefaultDownloadTimeout = 60 * time.Second

	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultMinPDFSize is the minimum byte size accepted as a valid PDF.
	DefaultMinPDFSize = 1000
)

// Config holds scraper configuration.
type Config struct {
	// StartURL is the page the crawl begins from.
	StartURL string

	// OutputDir receives the downloaded PDF files.
	OutputDir string

	// MaxPages caps the number of pages visited.
	MaxPages int

	// RateLimit is the minimum interval between HTTP requests.
	RateLimit time.Duration

	// PageTimeout is the per-page request timeout.
	PageTimeout time.Duration

	// DownloadTimeout is the per-download request timeout.
	DownloadTimeout time.Duration

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// MinPDFSize rejects downloads smaller than this many bytes.
	MinPDFSize int
}

// DefaultConfig returns a Config with sensible defaults for the given
// start URL and output directory.
func DefaultConfig(startURL, outputDir string) Config {
	return Config{
		StartURL:        startURL,
		OutputDir:       outputDir,
		MaxPages:        DefaultMaxPages,
		RateLimit:       DefaultRateLimit,
		PageTimeout:     DefaultPageTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		UserAgent:       DefaultUserAgent,
		MinPDFSize:      DefaultMinPDFSize,
	}
}
