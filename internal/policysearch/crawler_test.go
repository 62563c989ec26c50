package policysearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"policyhub/internal/models"
)

func testCrawler(t *testing.T, retries int) *Crawler {
	t.Helper()
	return NewCrawler(5*time.Second, "test-agent", retries, zap.NewNop())
}

func resultPage(withDates bool) string {
	date := ""
	if withDates {
		date = `<span class="date">2024-05-01</span>`
	}
	page := "<html><body>"
	for i := 0; i < 3; i++ {
		page += fmt.Sprintf(`<div class="result"><h3><a href="/p/%d">测试政策通知%d</a></h3>%s</div>`, i, i, date)
	}
	return page + "</body></html>"
}

func TestCrawler_FirstAttemptSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, resultPage(true))
	}))
	defer srv.Close()

	c := testCrawler(t, 2)
	records, err := c.FetchRecords(context.Background(), srv.URL, func(doc *goquery.Document) []PolicyRecord {
		return parseRecords(doc, portalSelectors, "test", srv.URL)
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestCrawler_SwitchesBackendOnThinParse(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// Page never carries dates, so every parse fails the substance check.
		fmt.Fprint(w, resultPage(false))
	}))
	defer srv.Close()

	c := testCrawler(t, 2)
	records, err := c.FetchRecords(context.Background(), srv.URL, func(doc *goquery.Document) []PolicyRecord {
		return parseRecords(doc, portalSelectors, "test", srv.URL)
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// 1 initial attempt + 2 retries across alternating backends.
	if n := hits.Load(); n != 3 {
		t.Errorf("server hit %d times, want 3", n)
	}
	// Best-effort records still come back.
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestCrawler_AllAttemptsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testCrawler(t, 2)
	records, err := c.FetchRecords(context.Background(), srv.URL, func(doc *goquery.Document) []PolicyRecord {
		return parseRecords(doc, models.PortalSelectors{Result: "div"}, "test", srv.URL)
	})
	if err == nil {
		t.Fatal("expected error when every backend fails")
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
