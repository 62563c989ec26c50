package policysearch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"policyhub/internal/models"
)

// buildSearchURL substitutes the escaped query into the portal's search
// URL template.
func buildSearchURL(template, query string) string {
	return fmt.Sprintf(template, url.QueryEscape(query))
}

// parseRecords extracts policy records from a result page using the
// portal's selector config. Relative links are resolved against the page
// URL; rows without a link are dropped.
func parseRecords(doc *goquery.Document, selectors models.PortalSelectors, source, pageURL string) []PolicyRecord {
	base, _ := url.Parse(pageURL)

	var records []PolicyRecord
	doc.Find(selectors.Result).Each(func(_ int, s *goquery.Selection) {
		rec := PolicyRecord{
			Title:  strings.TrimSpace(s.Find(selectors.Title).First().Text()),
			Source: source,
		}

		link := s.Find(selectors.URL).First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			// Some portals put the href on the title node itself.
			href, ok = s.Find(selectors.Title).First().Attr("href")
			if !ok || href == "" {
				return
			}
		}
		rec.URL = resolveURL(base, href)

		if selectors.Date != "" {
			rec.PublishDate = strings.TrimSpace(s.Find(selectors.Date).First().Text())
		}
		if selectors.Department != "" {
			rec.Department = strings.TrimSpace(s.Find(selectors.Department).First().Text())
		}

		records = append(records, rec)
	})
	return records
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// normalizeURL canonicalizes a record URL for dedup: lowercased host,
// stripped scheme, fragment and trailing slash.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.Fragment = ""
	host := strings.ToLower(u.Host)
	path := strings.TrimSuffix(u.Path, "/")
	key := host + path
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}
