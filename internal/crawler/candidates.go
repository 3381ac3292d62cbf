package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-crawler/internal/extractor"
)

// SelectCandidates maps the first pool ASIN-bearing result items of a search
// page to canonical product URLs, in document order, keeping at most limit.
func SelectCandidates(html, host string, pool, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	urls := []string{}
	doc.Find(extractor.ResultItemSelector).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= pool {
			return false
		}
		if asin := strings.TrimSpace(item.AttrOr("data-asin", "")); asin != "" {
			urls = append(urls, extractor.ProductURL(host, asin))
		}
		return true
	})

	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}
