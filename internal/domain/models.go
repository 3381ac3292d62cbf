package domain

import "time"

// ScrapeInput is the payload that starts a run. Query falls back to the
// configured default when empty.
type ScrapeInput struct {
	Query string `json:"query,omitempty"`
}

// CapturedPage is an immutable snapshot recorded by the crawler.
type CapturedPage struct {
	Label     string
	HTML      string
	SourceURL string
}

// Complete reports whether both members of the snapshot pair are present.
func (p CapturedPage) Complete() bool {
	return p.HTML != "" && p.SourceURL != ""
}

// ProductSummary is one result item of a search page.
type ProductSummary struct {
	ASIN         string   `json:"asin"`
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Rating       *float64 `json:"rating"`
	ReviewsCount *string  `json:"reviews_count"`
	Image        *string  `json:"image"`
	URL          string   `json:"url"`
	Badge        *string  `json:"badge"`
	Category     *string  `json:"category"`
	Delivery     *string  `json:"delivery"`
	Prime        bool     `json:"prime"`
}

// SearchResults holds every summary of the captured search page in
// document order.
type SearchResults struct {
	SearchURL    string           `json:"search_url"`
	TotalResults string           `json:"total_results"`
	Products     []ProductSummary `json:"products"`
}

// ProductDetail is the record extracted from one product page.
type ProductDetail struct {
	URL          string   `json:"url"`
	ASIN         string   `json:"asin"`
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Brand        string   `json:"brand"`
	Rating       *float64 `json:"rating"`
	ReviewsCount *string  `json:"reviews_count"`
	AmazonChoice *string  `json:"amazon_choice"`
	SalesInfo    *string  `json:"sales_info"`
	Availability string   `json:"availability"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	Images       []string `json:"images"`
	Promotions   []string `json:"promotions"`
	DeliveryInfo *string  `json:"delivery_info"`
	VATInfo      *string  `json:"vat_info"`
}

// ScrapeResult is the value returned to the caller at the end of a run.
type ScrapeResult struct {
	SearchResults  SearchResults   `json:"search_results"`
	ProductDetails []ProductDetail `json:"product_details"`
	ScrapedAt      time.Time       `json:"scrape_date"`
}
