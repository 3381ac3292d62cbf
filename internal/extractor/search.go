package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-crawler/internal/domain"
	"github.com/user/catalog-crawler/pkg/utils"
	"go.uber.org/zap"
)

var (
	searchTitleRules = []Rule{
		Text("h2 .a-link-normal"),
		Text("h2.a-size-base-plus"),
		Text(".a-size-base-plus"),
	}
	searchRatingRules = []Rule{
		Text(".a-icon-star-small .a-icon-alt"),
		Text(".a-icon-star .a-icon-alt"),
		Text(".a-star-mini .a-icon-alt"),
	}
	searchReviewRules = []Rule{
		Text(".a-size-base.s-underline-text"),
		Text(".s-underline-text"),
	}
	searchImageRules = []Rule{
		Attr("img.s-image", "src"),
		Attr("img.s-image", "data-src"),
	}
	totalResultsRules = []Rule{
		Text(".s-result-count"),
		FirstText(`[data-component-type="s-result-info-bar"] h1 span`),
	}
)

// ExtractSearch builds the search record of a captured results page.
func (x *Extractor) ExtractSearch(html, pageURL string) (domain.SearchResults, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return domain.SearchResults{}, err
	}
	r := record{x: x, url: pageURL}

	results := domain.SearchResults{
		SearchURL:    pageURL,
		TotalResults: field(r, "total_results", "", plain(func() string { return Resolve(doc.Selection, totalResultsRules...) })),
		Products:     []domain.ProductSummary{},
	}

	doc.Find(ResultItemSelector).Each(func(_ int, item *goquery.Selection) {
		asin, _ := item.Attr("data-asin")
		results.Products = append(results.Products, x.summary(r, item, asin))
	})

	x.logger.Debug("search page extracted",
		zap.String("url", pageURL),
		zap.Int("products", len(results.Products)))
	return results, nil
}

func (x *Extractor) summary(r record, item *goquery.Selection, asin string) domain.ProductSummary {
	return domain.ProductSummary{
		ASIN: asin,
		URL:  ProductURL(x.host, asin),
		Title: field(r, "title", "", plain(func() string {
			return Resolve(item, searchTitleRules...)
		})),
		Price: field(r, "price", "", plain(func() string {
			return Resolve(item, FirstText(".a-price .a-offscreen"))
		})),
		Rating: field(r, "rating", (*float64)(nil), plain(func() *float64 {
			return ResolveFloat(item, ParseDecimal, searchRatingRules...)
		})),
		ReviewsCount: field(r, "reviews_count", (*string)(nil), plain(func() *string {
			return ResolveOptional(item, searchReviewRules...)
		})),
		Image: field(r, "image", (*string)(nil), plain(func() *string {
			src := Resolve(item, searchImageRules...)
			if src == "" {
				return nil
			}
			return ptr(utils.ToAbsoluteURL(r.url, src))
		})),
		Badge: field(r, "badge", (*string)(nil), plain(func() *string {
			return ResolveOptional(item, Text(".a-badge-text"))
		})),
		Category: field(r, "category", (*string)(nil), plain(func() *string {
			return ResolveOptional(item, Text(".a-color-base.s-background-color-platinum"))
		})),
		Delivery: field(r, "delivery", (*string)(nil), plain(func() *string {
			return ResolveOptional(item, Text(".a-color-base.puis-normal-weight-text"))
		})),
		Prime: field(r, "prime", false, plain(func() bool {
			return Exists(item, ".a-icon-prime")
		})),
	}
}
