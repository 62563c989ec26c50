package policysearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// fetcher retrieves a page and returns its parsed DOM.
type fetcher interface {
	Name() string
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

type staticFetcher struct {
	client    *http.Client
	userAgent string
}

func newStaticFetcher(timeout time.Duration, userAgent string) *staticFetcher {
	return &staticFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *staticFetcher) Name() string { return "static" }

func (f *staticFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// collectorFetcher runs the page through gocolly, which handles redirects,
// cookies and charset detection that plain GETs choke on.
type collectorFetcher struct {
	timeout   time.Duration
	userAgent string
}

func newCollectorFetcher(timeout time.Duration, userAgent string) *collectorFetcher {
	return &collectorFetcher{timeout: timeout, userAgent: userAgent}
}

func (f *collectorFetcher) Name() string { return "collector" }

func (f *collectorFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)

	var doc *goquery.Document
	var parseErr error

	c.OnResponse(func(r *colly.Response) {
		doc, parseErr = goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()

	if parseErr != nil {
		return nil, parseErr
	}
	if doc == nil {
		return nil, errors.New("collector: empty response")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Crawler fetches a page and parses it into records, switching backends
// when the parse comes back without substance. First attempt uses the
// static backend; each retry flips to the other one, up to maxRetries
// retries total.
type Crawler struct {
	backends   []fetcher
	maxRetries int
	logger     *zap.Logger
}

func NewCrawler(timeout time.Duration, userAgent string, maxRetries int, logger *zap.Logger) *Crawler {
	return &Crawler{
		backends: []fetcher{
			newStaticFetcher(timeout, userAgent),
			newCollectorFetcher(timeout, userAgent),
		},
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// FetchRecords returns the first substantial parse, or the best parse seen
// across attempts. A nil slice with nil error means every backend came
// back empty.
func (c *Crawler) FetchRecords(ctx context.Context, pageURL string, parse func(*goquery.Document) []PolicyRecord) ([]PolicyRecord, error) {
	var best []PolicyRecord
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		backend := c.backends[attempt%len(c.backends)]
		doc, err := backend.Fetch(ctx, pageURL)
		if err != nil {
			lastErr = err
			c.logger.Warn("crawl attempt failed",
				zap.String("backend", backend.Name()),
				zap.String("url", pageURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		records := parse(doc)
		if !lacksSubstance(records) {
			return records, nil
		}
		if len(records) > len(best) {
			best = records
		}
		c.logger.Debug("crawl parse lacked substance, switching backend",
			zap.String("backend", backend.Name()),
			zap.String("url", pageURL),
			zap.Int("records", len(records)))
	}

	if best == nil && lastErr != nil {
		return nil, lastErr
	}
	return best, nil
}
