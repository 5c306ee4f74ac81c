package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// yearPattern matches a four-digit year in [1900, 2099] bounded by
// non-digits.
var yearPattern = regexp.MustCompile(`(?:^|[^\d])((?:19|20)\d{2})(?:[^\d]|$)`)

// IsPDFURL reports whether a URL likely points at a PDF, by extension or
// by a "pdf" path segment.
func IsPDFURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	if strings.HasSuffix(path, ".pdf") {
		return true
	}
	for _, segment := range strings.Split(path, "/") {
		if strings.Contains(segment, "pdf") {
			return true
		}
	}
	return false
}

// ExtractYear pulls an election year out of a URL. The second return is
// false when no year in [1900, 2099] is present.
func ExtractYear(rawURL string) (string, bool) {
	match := yearPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// relevantPathWords mark pages worth crawling into.
var relevantPathWords = []string{"election", "statistic", "data", "report", "document"}

// relevantLinkWords mark anchor text that may hide a download.
var relevantLinkWords = []string{"download", "pdf", "report", "statistic"}

// pageLooksRelevant checks the URL for election-related path words.
func pageLooksRelevant(rawURL string) bool {
	lowered := strings.ToLower(rawURL)
	for _, word := range relevantPathWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// linkTextLooksRelevant checks anchor text for download-related words.
func linkTextLooksRelevant(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range relevantLinkWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// PageLinks is the classified link inventory of one fetched HTML page.
type PageLinks struct {
	// PDFs are absolute URLs that look like PDF documents.
	PDFs []string

	// Pages are absolute same-domain URLs worth enqueueing.
	Pages []string

	// YearPages maps discovered years to the page URL carrying them.
	YearPages map[string]string
}

// ExtractLinks parses an HTML page and classifies its anchors, iframes,
// and form actions relative to pageURL. Only links within baseDomain are
// returned.
func ExtractLinks(pageURL *url.URL, baseDomain string, doc *goquery.Document) PageLinks {
	links := PageLinks{YearPages: make(map[string]string)}
	seen := make(map[string]bool)

	add := func(raw string, anchorText string) {
		resolved, err := pageURL.Parse(raw)
		if err != nil {
			return
		}
		absolute := resolved.String()
		if seen[absolute] {
			return
		}
		seen[absolute] = true

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.HasPrefix(absolute, baseDomain) {
			return
		}

		if IsPDFURL(absolute) {
			links.PDFs = append(links.PDFs, absolute)
			return
		}

		relevant := pageLooksRelevant(absolute)
		if relevant {
			if year, ok := ExtractYear(absolute); ok {
				links.YearPages[year] = absolute
			}
		}
		if relevant || linkTextLooksRelevant(anchorText) {
			links.Pages = append(links.Pages, absolute)
		}
	}

	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		add(href, selection.Text())
	})

	doc.Find("iframe[src]").Each(func(_ int, selection *goquery.Selection) {
		src, _ := selection.Attr("src")
		add(src, "")
	})

	doc.Find("form[action]").Each(func(_ int, selection *goquery.Selection) {
		if !linkTextLooksRelevant(selection.Text()) {
			return
		}
		action, _ := selection.Attr("action")
		add(action, selection.Text())
	})

	return links
}
