package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-crawler/internal/domain"
	"github.com/user/catalog-crawler/pkg/utils"
	"go.uber.org/zap"
)

// Storefront phrases that prefix or suffix the byline brand.
var (
	brandPrefixes = []string{"Visiter la boutique ", "Visit the ", "Marque : ", "Marque: "}
	brandSuffixes = []string{" Store"}
)

var (
	fallbackPriceRules = []Rule{
		FirstText(".a-price .a-offscreen"),
		FirstText("#corePriceDisplay_desktop_feature_div .a-offscreen"),
		FirstText(".a-color-price"),
	}
	productRatingRules = []Rule{
		Attr("#acrPopover", "title"),
		FirstText(".a-icon-star .a-icon-alt"),
		Text(".a-star-mini .a-icon-alt"),
	}
	availabilityRules = []Rule{
		Text("#availability"),
		Text(".a-color-success"),
	}
	mainImageRules = []Rule{
		Attr("#landingImage", "src"),
		Attr(".a-dynamic-image", "src"),
	}
	deliveryInfoRules = []Rule{
		Text("#mir-layout-DELIVERY_BLOCK"),
		Text("#deliveryBlockMessage"),
		Text(".a-color-base.puis-normal-weight-text"),
	}
)

// ExtractProduct builds the detail record of a captured product page.
func (x *Extractor) ExtractProduct(html, pageURL string) (domain.ProductDetail, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	root := doc.Selection
	r := record{x: x, url: pageURL}

	d := domain.ProductDetail{URL: pageURL}
	d.ASIN = field(r, "asin", "", plain(func() string { return ASINFromURL(pageURL) }))
	d.Title = field(r, "title", "", plain(func() string { return Resolve(root, Text("#productTitle")) }))
	d.Price = field(r, "price", "", plain(func() string { return productPrice(root) }))
	d.Brand = field(r, "brand", "", plain(func() string {
		return Resolve(root, Text("#bylineInfo").Then(stripStorefront))
	}))
	d.Rating = field(r, "rating", (*float64)(nil), plain(func() *float64 {
		return ResolveFloat(root, ParseRating, productRatingRules...)
	}))
	d.ReviewsCount = field(r, "reviews_count", (*string)(nil), plain(func() *string {
		text := Resolve(root, Text("#acrCustomerReviewText"))
		if text == "" {
			return nil
		}
		return ParseReviewCount(text)
	}))
	d.AmazonChoice = field(r, "amazon_choice", (*string)(nil), plain(func() *string {
		if !Exists(root, ".ac-badge-wrapper") {
			return nil
		}
		return ptr(Resolve(root, Text(".ac-badge-wrapper .ac-for-text"), Text(".ac-badge-wrapper")))
	}))
	d.SalesInfo = field(r, "sales_info", (*string)(nil), plain(func() *string {
		return ResolveOptional(root, Text(".social-proofing-faceout-title-text"))
	}))
	d.Availability = field(r, "availability", "", plain(func() string {
		return Resolve(root, availabilityRules...)
	}))
	d.Features = field(r, "features", []string{}, plain(func() []string {
		return ResolveAll(root, "#feature-bullets .a-list-item")
	}))
	d.Description = field(r, "description", "", plain(func() string {
		if desc := Resolve(root, Text("#productDescription p")); desc != "" {
			return desc
		}
		return joinNonEmpty(d.Features, " ")
	}))
	d.Images = field(r, "images", []string{}, func() ([]string, error) {
		return productImages(root, pageURL)
	})
	d.Promotions = field(r, "promotions", []string(nil), plain(func() []string {
		return promotions(root)
	}))
	d.DeliveryInfo = field(r, "delivery_info", (*string)(nil), plain(func() *string {
		return ResolveOptional(root, deliveryInfoRules...)
	}))
	d.VATInfo = field(r, "vat_info", (*string)(nil), plain(func() *string {
		return ResolveOptional(root, Text("#vatMessage_feature_div"))
	}))

	x.logger.Debug("product page extracted",
		zap.String("url", pageURL),
		zap.String("asin", d.ASIN))
	return d, nil
}

// productPrice prefers the split whole/fraction/symbol display and falls
// back to the flat price nodes.
func productPrice(root *goquery.Selection) string {
	whole := Resolve(root, FirstText(".a-price-whole"))
	fraction := Resolve(root, FirstText(".a-price-fraction"))
	symbol := Resolve(root, FirstText(".a-price-symbol"))
	if price := ComposePrice(whole, fraction, symbol); price != "" {
		return price
	}
	return Resolve(root, fallbackPriceRules...)
}

func stripStorefront(s string) string {
	for _, p := range brandPrefixes {
		s = strings.TrimPrefix(s, p)
	}
	for _, suf := range brandSuffixes {
		s = strings.TrimSuffix(s, suf)
	}
	return s
}

func productImages(root *goquery.Selection, pageURL string) ([]string, error) {
	raw, ok := root.Find("#imgTagWrapperId img[data-a-dynamic-image]").First().Attr("data-a-dynamic-image")
	if ok && strings.TrimSpace(raw) != "" {
		keys, err := DynamicImageKeys(raw)
		if err != nil {
			return nil, domain.NewMalformedAttribute("data-a-dynamic-image", err)
		}
		return keys, nil
	}
	if main := Resolve(root, mainImageRules...); main != "" {
		return []string{utils.ToAbsoluteURL(pageURL, main)}, nil
	}
	return []string{}, nil
}

// promotions returns nil when no promotion node has text.
func promotions(root *goquery.Selection) []string {
	var out []string
	root.Find(".promoPriceBlockMessage").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func joinNonEmpty(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
