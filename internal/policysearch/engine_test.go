package policysearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"policyhub/internal/models"
	"policyhub/pkg/config"
	"policyhub/pkg/redis"
)

type fakeRegistry struct {
	byRegion map[string]*models.PolicyPortal
}

func (f *fakeRegistry) GetByRegion(ctx context.Context, region string) (*models.PolicyPortal, error) {
	return f.byRegion[region], nil
}

func (f *fakeRegistry) List(ctx context.Context) ([]*models.PolicyPortal, error) {
	var out []*models.PolicyPortal
	for _, p := range f.byRegion {
		out = append(out, p)
	}
	return out, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: make(map[string]string)} }

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", redis.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func policyPage(titles ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i, title := range titles {
		fmt.Fprintf(&b, `<div class="result"><h3><a href="/p/%d">%s</a></h3><span class="date">2024-06-0%d</span><span class="dept">市民政局</span></div>`, i, title, i+1)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func testSearchConfig(engineURL string) *config.SearchConfig {
	return &config.SearchConfig{
		QualityThreshold: 0.6,
		RequestTimeout:   5 * time.Second,
		MaxConcurrency:   3,
		CrawlerRetries:   2,
		EngineURL:        engineURL,
		CacheTTL:         time.Minute,
		UserAgent:        "test-agent",
	}
}

func portalFor(srv *httptest.Server, region, parent string) *models.PolicyPortal {
	return &models.PolicyPortal{
		Region:       region,
		Name:         region + "门户",
		SearchURL:    srv.URL + "/search?q=%s",
		ParentRegion: parent,
		Selectors:    portalSelectors,
		Enabled:      true,
	}
}

func TestEngine_LocalTierWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, policyPage("关于养老补贴发放的通知", "养老补贴申领办法"))
	}))
	defer srv.Close()

	registry := &fakeRegistry{byRegion: map[string]*models.PolicyPortal{
		"示例市": portalFor(srv, "示例市", "示例省"),
	}}
	engine := NewEngine(registry, nil, testSearchConfig("http://127.0.0.1:1/search?q=%s"), zap.NewNop())

	result := engine.Search(context.Background(), SearchRequest{Query: "养老 补贴", Region: "示例市"})
	if result.Tier != tierLocal {
		t.Fatalf("tier = %q, want local (summary: %s)", result.Tier, result.Summary)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
	if result.Quality < 0.6 {
		t.Errorf("quality = %v, want >= 0.6", result.Quality)
	}
	if !strings.Contains(result.Summary, "local") {
		t.Errorf("summary does not name the winning tier: %s", result.Summary)
	}
}

func TestEngine_EscalatesToProvincial(t *testing.T) {
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Off-topic results keep local tier quality below the threshold.
		fmt.Fprint(w, policyPage("机关食堂采购公示"))
	}))
	defer local.Close()

	provincial := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, policyPage("省级养老补贴实施办法", "养老补贴资金管理规定"))
	}))
	defer provincial.Close()

	registry := &fakeRegistry{byRegion: map[string]*models.PolicyPortal{
		"示例市": portalFor(local, "示例市", "示例省"),
		"示例省": portalFor(provincial, "示例省", ""),
	}}
	engine := NewEngine(registry, nil, testSearchConfig("http://127.0.0.1:1/search?q=%s"), zap.NewNop())

	result := engine.Search(context.Background(), SearchRequest{Query: "养老 补贴", Region: "示例市"})
	if result.Tier != tierProvincial {
		t.Fatalf("tier = %q, want provincial (summary: %s)", result.Tier, result.Summary)
	}
	if !strings.Contains(result.Summary, "local") || !strings.Contains(result.Summary, "provincial") {
		t.Errorf("summary does not list tried tiers: %s", result.Summary)
	}
}

func TestEngine_FixedStrategyRunsSingleTier(t *testing.T) {
	var localHits int
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		localHits++
		fmt.Fprint(w, policyPage("无关条目"))
	}))
	defer local.Close()

	provincial := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, policyPage("省级补贴办法"))
	}))
	defer provincial.Close()

	registry := &fakeRegistry{byRegion: map[string]*models.PolicyPortal{
		"示例市": portalFor(local, "示例市", "示例省"),
		"示例省": portalFor(provincial, "示例省", ""),
	}}
	engine := NewEngine(registry, nil, testSearchConfig("http://127.0.0.1:1/search?q=%s"), zap.NewNop())

	result := engine.Search(context.Background(), SearchRequest{
		Query:    "补贴",
		Region:   "示例市",
		Strategy: StrategyProvincial,
	})
	if result.Tier != tierProvincial {
		t.Fatalf("tier = %q, want provincial", result.Tier)
	}
	if localHits != 0 {
		t.Errorf("local portal hit %d times under fixed provincial strategy", localHits)
	}
}

func TestEngine_TotalFailureReturnsEmptyResult(t *testing.T) {
	registry := &fakeRegistry{byRegion: map[string]*models.PolicyPortal{}}
	engine := NewEngine(registry, nil, testSearchConfig("http://127.0.0.1:1/search?q=%s"), zap.NewNop())

	result := engine.Search(context.Background(), SearchRequest{Query: "补贴", Region: "未知市"})
	if len(result.Records) != 0 {
		t.Fatalf("got %d records, want 0", len(result.Records))
	}
	if result.Records == nil {
		t.Error("records should be an empty slice, not nil")
	}
	if result.Summary == "" {
		t.Error("diagnostic summary missing")
	}
}

func TestEngine_CachesResults(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, policyPage("养老补贴发放通知"))
	}))
	defer srv.Close()

	registry := &fakeRegistry{byRegion: map[string]*models.PolicyPortal{
		"示例市": portalFor(srv, "示例市", ""),
	}}
	engine := NewEngine(registry, newMemCache(), testSearchConfig("http://127.0.0.1:1/search?q=%s"), zap.NewNop())

	req := SearchRequest{Query: "养老 补贴", Region: "示例市"}
	first := engine.Search(context.Background(), req)
	if first.Cached {
		t.Error("first search should not be served from cache")
	}

	second := engine.Search(context.Background(), req)
	if !second.Cached {
		t.Error("second search should be served from cache")
	}
	if hits != 1 {
		t.Errorf("portal hit %d times, want 1", hits)
	}
	if len(second.Records) != len(first.Records) {
		t.Errorf("cached result differs: %d vs %d records", len(second.Records), len(first.Records))
	}
}

func TestEngine_LimitDefaultsAndCap(t *testing.T) {
	titles := make([]string, 20)
	for i := range titles {
		titles[i] = fmt.Sprintf("养老补贴办法第%d号", i)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, policyPage(titles...))
	}))
	defer srv.Close()

	registry := &fakeRegistry{byRegion: map[string]*models.PolicyPortal{
		"示例市": portalFor(srv, "示例市", ""),
	}}
	engine := NewEngine(registry, nil, testSearchConfig("http://127.0.0.1:1/search?q=%s"), zap.NewNop())

	result := engine.Search(context.Background(), SearchRequest{Query: "养老 补贴", Region: "示例市"})
	if len(result.Records) != defaultLimit {
		t.Errorf("default limit not applied: got %d records", len(result.Records))
	}
}

func TestEngine_DisabledPortalNotCrawled(t *testing.T) {
	var localHits int
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		localHits++
		fmt.Fprint(w, policyPage("关于养老补贴发放的通知"))
	}))
	defer local.Close()

	provincial := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, policyPage("省级养老补贴实施办法", "养老补贴资金管理规定"))
	}))
	defer provincial.Close()

	disabled := portalFor(local, "示例市", "示例省")
	disabled.Enabled = false
	registry := &fakeRegistry{byRegion: map[string]*models.PolicyPortal{
		"示例市": disabled,
		"示例省": portalFor(provincial, "示例省", ""),
	}}
	engine := NewEngine(registry, nil, testSearchConfig("http://127.0.0.1:1/search?q=%s"), zap.NewNop())

	result := engine.Search(context.Background(), SearchRequest{Query: "养老 补贴", Region: "示例市"})
	if localHits != 0 {
		t.Fatalf("disabled portal was crawled %d times", localHits)
	}
	if result.Tier != tierProvincial {
		t.Fatalf("tier = %q, want provincial (summary: %s)", result.Tier, result.Summary)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
}
