package policysearch

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"policyhub/internal/models"
)

const portalPage = `
<html><body>
<div class="result">
  <h3><a href="/policy/1.html">关于发放养老补贴的通知</a></h3>
  <span class="date">2024-03-12</span>
  <span class="dept">市民政局</span>
</div>
<div class="result">
  <h3><a href="https://other.example.gov.cn/2.html">企业扶持资金管理办法</a></h3>
  <span class="date">2024-01-05</span>
  <span class="dept">市财政局</span>
</div>
<div class="result">
  <h3><a href="">无链接条目</a></h3>
</div>
</body></html>`

var portalSelectors = models.PortalSelectors{
	Result:     "div.result",
	Title:      "h3 a",
	URL:        "h3 a",
	Date:       "span.date",
	Department: "span.dept",
}

func TestParseRecords(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(portalPage))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	records := parseRecords(doc, portalSelectors, "测试门户", "https://www.example.gov.cn/search?q=x")
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (linkless row dropped)", len(records))
	}

	first := records[0]
	if first.Title != "关于发放养老补贴的通知" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://www.example.gov.cn/policy/1.html" {
		t.Errorf("relative link not resolved: %q", first.URL)
	}
	if first.PublishDate != "2024-03-12" || first.Department != "市民政局" {
		t.Errorf("date/department = %q / %q", first.PublishDate, first.Department)
	}
	if first.Source != "测试门户" {
		t.Errorf("source = %q", first.Source)
	}

	if records[1].URL != "https://other.example.gov.cn/2.html" {
		t.Errorf("absolute link rewritten: %q", records[1].URL)
	}
}

func TestBuildSearchURL(t *testing.T) {
	got := buildSearchURL("https://www.example.gov.cn/search?q=%s", "养老 补贴")
	want := "https://www.example.gov.cn/search?q=" + "%E5%85%BB%E8%80%81+%E8%A1%A5%E8%B4%B4"
	if got != want {
		t.Errorf("buildSearchURL = %q, want %q", got, want)
	}
}

func TestNormalizeURL(t *testing.T) {
	a := normalizeURL("https://WWW.Example.gov.cn/policy/1.html/")
	b := normalizeURL("http://www.example.gov.cn/policy/1.html#section")
	if a != b {
		t.Errorf("normalized forms differ: %q vs %q", a, b)
	}
}

func TestDedupAndRank(t *testing.T) {
	records := []PolicyRecord{
		{Title: "low", URL: "https://a.gov.cn/1", Relevance: 0.2},
		{Title: "dup-high", URL: "https://A.gov.cn/1/", Relevance: 0.9},
		{Title: "mid", URL: "https://a.gov.cn/2", Relevance: 0.5},
	}

	out := dedupAndRank(records, 10)
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2 after dedup", len(out))
	}
	if out[0].Title != "dup-high" || out[1].Title != "mid" {
		t.Errorf("wrong order: %q, %q", out[0].Title, out[1].Title)
	}

	if got := dedupAndRank(records, 1); len(got) != 1 {
		t.Errorf("limit not applied: %d records", len(got))
	}
}
