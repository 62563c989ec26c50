package policysearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"policyhub/internal/models"
	"policyhub/pkg/config"
	"policyhub/pkg/redis"
)

const (
	tierLocal      = "local"
	tierProvincial = "provincial"
	tierEngine     = "engine"
)

// PortalRegistry resolves regions to portal rows.
type PortalRegistry interface {
	GetByRegion(ctx context.Context, region string) (*models.PolicyPortal, error)
	List(ctx context.Context) ([]*models.PolicyPortal, error)
}

// Cache is the subset of the redis store the engine uses. A nil Cache
// disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Generic selectors for the web search engine tier.
var engineSelectors = models.PortalSelectors{
	Result: "li.b_algo",
	Title:  "h2",
	URL:    "h2 a",
	Date:   "span.news_dt",
}

// Engine runs tiered policy search: local portal, then the provincial
// portal, then a general web search engine. Lower tiers escalate when
// their result quality falls below the configured threshold.
type Engine struct {
	portals PortalRegistry
	cache   Cache
	crawler *Crawler
	cfg     *config.SearchConfig
	logger  *zap.Logger
}

func NewEngine(portals PortalRegistry, cache Cache, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	return &Engine{
		portals: portals,
		cache:   cache,
		crawler: NewCrawler(cfg.RequestTimeout, cfg.UserAgent, cfg.CrawlerRetries, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Search never returns an error: portal failures escalate to the next
// tier, and total failure produces an empty result with a diagnostic
// summary.
func (e *Engine) Search(ctx context.Context, req SearchRequest) *SearchResult {
	if req.Strategy == "" {
		req.Strategy = StrategyAuto
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	key := cacheKey(req)
	if cached := e.fromCache(ctx, key); cached != nil {
		return cached
	}

	result := e.run(ctx, req)
	e.toCache(ctx, key, result)
	return result
}

func (e *Engine) run(ctx context.Context, req SearchRequest) *SearchResult {
	var (
		tried      []string
		best       []PolicyRecord
		bestTier   string
		bestScore  float64
		tierErrors []string
	)

	for _, tier := range e.planTiers(req.Strategy) {
		records, err := e.runTier(ctx, tier, req)
		tried = append(tried, tier)
		if err != nil {
			tierErrors = append(tierErrors, fmt.Sprintf("%s: %v", tier, err))
			continue
		}

		scoreRecords(records, req.Query)
		quality := tierQuality(records)
		e.logger.Info("search tier completed",
			zap.String("tier", tier),
			zap.Int("records", len(records)),
			zap.Float64("quality", quality))

		if len(records) > 0 && quality > bestScore {
			best = records
			bestTier = tier
			bestScore = quality
		}
		if len(records) > 0 && quality >= e.cfg.QualityThreshold {
			break
		}
	}

	if len(best) == 0 {
		summary := fmt.Sprintf("no policy records found (tiers tried: %s)", strings.Join(tried, ", "))
		if len(tierErrors) > 0 {
			summary += "; failures: " + strings.Join(tierErrors, "; ")
		}
		return &SearchResult{Records: []PolicyRecord{}, Summary: summary}
	}

	records := dedupAndRank(best, req.Limit)
	return &SearchResult{
		Records: records,
		Tier:    bestTier,
		Quality: bestScore,
		Summary: fmt.Sprintf("tiers tried: %s; served from %s tier (quality %.2f, %d records)",
			strings.Join(tried, ", "), bestTier, bestScore, len(records)),
	}
}

// planTiers maps a strategy onto the escalation order. Auto without a
// region has no local portal to try.
func (e *Engine) planTiers(strategy Strategy) []string {
	switch strategy {
	case StrategyLocal:
		return []string{tierLocal}
	case StrategyProvincial:
		return []string{tierProvincial}
	case StrategyEngine:
		return []string{tierEngine}
	}
	return []string{tierLocal, tierProvincial, tierEngine}
}

func (e *Engine) runTier(ctx context.Context, tier string, req SearchRequest) ([]PolicyRecord, error) {
	switch tier {
	case tierLocal:
		return e.searchLocal(ctx, req)
	case tierProvincial:
		return e.searchProvincial(ctx, req)
	case tierEngine:
		return e.searchEngine(ctx, req)
	}
	return nil, fmt.Errorf("unknown tier %s", tier)
}

func (e *Engine) searchLocal(ctx context.Context, req SearchRequest) ([]PolicyRecord, error) {
	if req.Region == "" {
		return nil, errors.New("no region given")
	}
	portal, err := e.portals.GetByRegion(ctx, req.Region)
	if err != nil {
		return nil, err
	}
	if portal == nil || !portal.Enabled {
		return nil, fmt.Errorf("no enabled portal registered for region %s", req.Region)
	}
	return e.searchPortals(ctx, []*models.PolicyPortal{portal}, req.Query)
}

// searchProvincial resolves the parent portal of the request's region.
// Without a region it fans out across every enabled provincial portal.
func (e *Engine) searchProvincial(ctx context.Context, req SearchRequest) ([]PolicyRecord, error) {
	if req.Region != "" {
		local, err := e.portals.GetByRegion(ctx, req.Region)
		if err != nil {
			return nil, err
		}
		if local != nil && local.Enabled && local.ParentRegion == "" {
			// The region itself is provincial.
			return e.searchPortals(ctx, []*models.PolicyPortal{local}, req.Query)
		}
		if local != nil && local.ParentRegion != "" {
			parent, err := e.portals.GetByRegion(ctx, local.ParentRegion)
			if err != nil {
				return nil, err
			}
			if parent != nil && parent.Enabled {
				return e.searchPortals(ctx, []*models.PolicyPortal{parent}, req.Query)
			}
		}
	}

	all, err := e.portals.List(ctx)
	if err != nil {
		return nil, err
	}
	var provincial []*models.PolicyPortal
	for _, p := range all {
		if p.Enabled && p.ParentRegion == "" {
			provincial = append(provincial, p)
		}
	}
	if len(provincial) == 0 {
		return nil, errors.New("no provincial portals registered")
	}
	return e.searchPortals(ctx, provincial, req.Query)
}

func (e *Engine) searchEngine(ctx context.Context, req SearchRequest) ([]PolicyRecord, error) {
	pageURL := buildSearchURL(e.cfg.EngineURL, req.Query)

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	return e.crawler.FetchRecords(fetchCtx, pageURL, func(doc *goquery.Document) []PolicyRecord {
		return parseRecords(doc, engineSelectors, "web", pageURL)
	})
}

// searchPortals fans out over the tier's candidate portals with bounded
// concurrency. Individual portal failures only drop that portal's records.
func (e *Engine) searchPortals(ctx context.Context, portals []*models.PolicyPortal, query string) ([]PolicyRecord, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrency)

	var mu sync.Mutex
	var all []PolicyRecord

	for _, portal := range portals {
		portal := portal
		g.Go(func() error {
			pageURL := buildSearchURL(portal.SearchURL, query)

			fetchCtx, cancel := context.WithTimeout(gctx, e.cfg.RequestTimeout)
			defer cancel()

			records, err := e.crawler.FetchRecords(fetchCtx, pageURL, func(doc *goquery.Document) []PolicyRecord {
				return parseRecords(doc, portal.Selectors, portal.Name, pageURL)
			})
			if err != nil {
				e.logger.Warn("portal search failed",
					zap.String("region", portal.Region),
					zap.String("url", pageURL),
					zap.Error(err))
				return nil
			}

			mu.Lock()
			all = append(all, records...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

// dedupAndRank removes duplicate URLs keeping the higher-relevance copy,
// sorts by relevance descending and truncates to limit.
func dedupAndRank(records []PolicyRecord, limit int) []PolicyRecord {
	seen := make(map[string]int, len(records))
	out := make([]PolicyRecord, 0, len(records))
	for _, rec := range records {
		key := normalizeURL(rec.URL)
		if idx, ok := seen[key]; ok {
			if rec.Relevance > out[idx].Relevance {
				out[idx] = rec
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func cacheKey(req SearchRequest) string {
	return fmt.Sprintf("policysearch:%s:%s:%s:%d", req.Query, req.Region, req.Strategy, req.Limit)
}

func (e *Engine) fromCache(ctx context.Context, key string) *SearchResult {
	if e.cache == nil {
		return nil
	}
	raw, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			e.logger.Warn("search cache read failed", zap.Error(err))
		}
		return nil
	}
	var result SearchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	result.Cached = true
	return &result
}

func (e *Engine) toCache(ctx context.Context, key string, result *SearchResult) {
	if e.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, string(raw), e.cfg.CacheTTL); err != nil {
		e.logger.Warn("search cache write failed", zap.Error(err))
	}
}
