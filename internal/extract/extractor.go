// Package extract fetches and cleans the source article for ingestion.
//
// The extractor pulls the configured Wikipedia article, walks the main
// content container and emits plain text with "== Title ==" heading
// markers so the segmenter can recover section titles. It has no side
// effects beyond the network read and is safe to call repeatedly.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/finaipro/colombiagpt/internal/log"
)

// ErrExtraction indicates the source was unreachable or malformed.
// Fatal to an ingestion run.
var ErrExtraction = errors.New("extraction failed")

const (
	// fetchTimeout bounds the article download.
	fetchTimeout = 15 * time.Second

	// userAgent mirrors a desktop browser; Wikipedia throttles default
	// Go HTTP client agents aggressively.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// maxBodyBytes caps the response size read into memory.
	maxBodyBytes = 20 << 20 // 20MB

	// editLinkText is the "[editar]" suffix Wikipedia appends to headings.
	editLinkText = "[editar]"
)

// contentSelector is the Wikipedia article body container.
const contentSelector = "div.mw-parser-output"

// skipParentSelector matches containers whose text is navigation or
// infobox noise, not article prose.
const skipParentSelector = "table.infobox, table.navbox, table.thumb, div.infobox, div.navbox, div.thumb"

// Extractor fetches cleaned article text from a fixed source location.
//
// Extractor is safe for concurrent use; the rate limiter keeps repeated
// ingestion runs polite toward the source host.
type Extractor struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	logger  log.Logger
}

// New creates an Extractor for the given article URL.
func New(articleURL string, logger log.Logger) (*Extractor, error) {
	u, err := url.Parse(articleURL)
	if err != nil {
		return nil, fmt.Errorf("parsing article URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("article URL must be http or https, got %q", articleURL)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Extractor{
		url:     articleURL,
		client:  &http.Client{Timeout: fetchTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}, nil
}

// URL returns the configured source location, used as the source
// identifier for every chunk produced from this document.
func (e *Extractor) URL() string {
	return e.url
}

// Fetch downloads the article and returns its cleaned text with heading
// markers preserved. All failures wrap ErrExtraction.
func (e *Extractor) Fetch(ctx context.Context) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %v", ErrExtraction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrExtraction, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching %s: %v", ErrExtraction, e.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d from %s", ErrExtraction, resp.StatusCode, e.url)
	}

	doc, err := goquery.NewDocumentFromReader(http.MaxBytesReader(nil, resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: parsing HTML: %v", ErrExtraction, err)
	}

	text, err := extractText(doc)
	if err != nil {
		return "", err
	}

	e.logger.Info("article extracted", "url", e.url, "bytes", len(text))
	return text, nil
}

// extractText walks the largest content container and joins paragraph and
// heading text, rendering headings as "== Title ==" markers.
func extractText(doc *goquery.Document) (string, error) {
	containers := doc.Find(contentSelector)
	if containers.Length() == 0 {
		return "", fmt.Errorf("%w: no %q container found", ErrExtraction, contentSelector)
	}

	// Pages can carry several parser-output divs (notices, previews);
	// the article body is the largest one.
	content := containers.First()
	if containers.Length() > 1 {
		best := -1
		containers.Each(func(_ int, sel *goquery.Selection) {
			html, err := goquery.OuterHtml(sel)
			if err == nil && len(html) > best {
				best = len(html)
				content = sel
			}
		})
	}

	var parts []string
	content.Find("p, h2, h3, h4").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered(skipParentSelector).Length() > 0 {
			return
		}

		// Collapse nested element text (links, spans) with single spaces.
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text == "" {
			return
		}

		if name := goquery.NodeName(sel); strings.HasPrefix(name, "h") {
			title := strings.TrimSpace(strings.ReplaceAll(text, editLinkText, ""))
			if title == "" {
				return
			}
			parts = append(parts, fmt.Sprintf("\n== %s ==\n", title))
			return
		}
		parts = append(parts, text)
	})

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: content container has no extractable text", ErrExtraction)
	}

	return strings.Join(parts, "\n"), nil
}
