package extractor

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/catalog-crawler/internal/monitoring"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const productURL = "https://www.amazon.fr/dp/B0FIRST001?th=1"

const productPage = `<html><body>
<span id="productTitle">  Samsung Galaxy A15 128 Go  </span>
<a id="bylineInfo">Visiter la boutique Samsung</a>
<span class="a-price"><span class="a-price-symbol">€</span><span class="a-price-whole">149<span class="a-price-decimal">,</span></span><span class="a-price-fraction">99</span></span>
<span class="a-price"><span class="a-offscreen">149,99€</span></span>
<span id="acrPopover" title="4,3 sur 5 étoiles"></span>
<span id="acrCustomerReviewText">2 451 évaluations</span>
<div class="ac-badge-wrapper"><span class="ac-for-text">smartphone</span></div>
<span class="social-proofing-faceout-title-text">Plus de 1 k achetés au cours du mois dernier</span>
<div id="availability"><span>En stock</span></div>
<div id="productDescription"><p>Un écran de 6,5 pouces.</p></div>
<div id="feature-bullets"><ul>
  <li><span class="a-list-item">Écran Super AMOLED</span></li>
  <li><span class="a-list-item">Batterie 5000 mAh</span></li>
</ul></div>
<div id="imgTagWrapperId"><img id="landingImage" src="https://m.media-amazon.com/main.jpg"
  data-a-dynamic-image="{&quot;https://m.media-amazon.com/big.jpg&quot;:[1500,1500],&quot;https://m.media-amazon.com/small.jpg&quot;:[500,500]}"></div>
<span class="promoPriceBlockMessage">Économisez 10 % avec un coupon</span>
<span class="promoPriceBlockMessage">   </span>
<div id="mir-layout-DELIVERY_BLOCK">Livraison GRATUITE jeudi 12 juin</div>
<div id="vatMessage_feature_div">Tous les prix incluent la TVA.</div>
</body></html>`

func TestExtractProduct(t *testing.T) {
	x := New("www.amazon.fr", zap.NewNop(), nil)

	d, err := x.ExtractProduct(productPage, productURL)
	require.NoError(t, err)

	assert.Equal(t, productURL, d.URL)
	assert.Equal(t, "B0FIRST001", d.ASIN)
	assert.Equal(t, "Samsung Galaxy A15 128 Go", d.Title)
	assert.Equal(t, "149,99€", d.Price)
	assert.Equal(t, "Samsung", d.Brand)
	assert.Equal(t, ptr(4.3), d.Rating)
	assert.Equal(t, ptr("2451"), d.ReviewsCount)
	assert.Equal(t, ptr("smartphone"), d.AmazonChoice)
	assert.Equal(t, ptr("Plus de 1 k achetés au cours du mois dernier"), d.SalesInfo)
	assert.Equal(t, "En stock", d.Availability)
	assert.Equal(t, "Un écran de 6,5 pouces.", d.Description)
	assert.Equal(t, []string{"Écran Super AMOLED", "Batterie 5000 mAh"}, d.Features)
	assert.Equal(t, []string{"https://m.media-amazon.com/big.jpg", "https://m.media-amazon.com/small.jpg"}, d.Images)
	assert.Equal(t, []string{"Économisez 10 % avec un coupon"}, d.Promotions)
	assert.Equal(t, ptr("Livraison GRATUITE jeudi 12 juin"), d.DeliveryInfo)
	assert.Equal(t, ptr("Tous les prix incluent la TVA."), d.VATInfo)
}

func TestExtractProductFallbacks(t *testing.T) {
	const page = `<html><body>
<span id="productTitle">Pixel 8</span>
<div id="corePriceDisplay_desktop_feature_div"><span class="a-offscreen">599,00€</span></div>
<span class="a-icon-star"><span class="a-icon-alt">4,1 sur 5 étoiles</span></span>
<span class="a-color-success">Il ne reste plus que 3 exemplaire(s) en stock.</span>
<div id="feature-bullets"><span class="a-list-item">Tensor G3</span><span class="a-list-item">Appareil photo 50 MP</span></div>
<img class="a-dynamic-image" src="//m.media-amazon.com/pixel.jpg">
<div id="deliveryBlockMessage">Livraison à 0,00€ samedi</div>
</body></html>`
	x := New("www.amazon.fr", zap.NewNop(), nil)

	d, err := x.ExtractProduct(page, "https://www.amazon.fr/gp/product/B0PIXEL8/ref=foo")
	require.NoError(t, err)

	assert.Equal(t, "B0PIXEL8", d.ASIN)
	assert.Equal(t, "599,00€", d.Price)
	assert.Equal(t, "", d.Brand)
	assert.Equal(t, ptr(4.1), d.Rating)
	assert.Nil(t, d.ReviewsCount)
	assert.Nil(t, d.AmazonChoice)
	assert.Nil(t, d.SalesInfo)
	assert.Equal(t, "Il ne reste plus que 3 exemplaire(s) en stock.", d.Availability)
	assert.Equal(t, "Tensor G3 Appareil photo 50 MP", d.Description)
	assert.Equal(t, []string{"https://m.media-amazon.com/pixel.jpg"}, d.Images)
	assert.Nil(t, d.Promotions)
	assert.Equal(t, ptr("Livraison à 0,00€ samedi"), d.DeliveryInfo)
	assert.Nil(t, d.VATInfo)
}

func TestExtractProductEmptyPageUsesSentinels(t *testing.T) {
	x := New("www.amazon.fr", zap.NewNop(), nil)

	d, err := x.ExtractProduct(`<html></html>`, "https://www.amazon.fr/some/slug")
	require.NoError(t, err)

	assert.Equal(t, "slug", d.ASIN)
	assert.Equal(t, "", d.Title)
	assert.Equal(t, "", d.Price)
	assert.Nil(t, d.Rating)
	assert.Equal(t, []string{}, d.Features)
	assert.Equal(t, []string{}, d.Images)
	assert.Nil(t, d.Promotions)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rating":null`)
	assert.Contains(t, string(raw), `"promotions":null`)
	assert.Contains(t, string(raw), `"features":[]`)
	assert.Contains(t, string(raw), `"images":[]`)
}

func TestMalformedDynamicImageIsIsolated(t *testing.T) {
	const page = `<html><body>
<span id="productTitle">Broken gallery</span>
<div id="imgTagWrapperId"><img data-a-dynamic-image="{not json"></div>
<span id="acrPopover" title="3,5 sur 5 étoiles"></span>
</body></html>`
	core, logs := observer.New(zapcore.WarnLevel)
	metrics := monitoring.NewMetrics()
	x := New("www.amazon.fr", zap.New(core), metrics)

	d, err := x.ExtractProduct(page, "https://www.amazon.fr/dp/B0BROKEN")
	require.NoError(t, err)

	assert.Equal(t, []string{}, d.Images)
	assert.Equal(t, "Broken gallery", d.Title)
	assert.Equal(t, ptr(3.5), d.Rating)

	entries := logs.FilterField(zap.String("field", "images")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "field extraction failed", entries[0].Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FieldFaults.WithLabelValues("images")))
}

func TestFieldRecoversPanics(t *testing.T) {
	x := New("www.amazon.fr", zap.NewNop(), nil)
	r := record{x: x, url: "https://www.amazon.fr/dp/B0X"}

	got := field(r, "price", "fallback", plain(func() string { panic("boom") }))
	assert.Equal(t, "fallback", got)
}

func TestExtractionIsIdempotent(t *testing.T) {
	x := New("www.amazon.fr", zap.NewNop(), nil)

	first, err := x.ExtractProduct(productPage, productURL)
	require.NoError(t, err)
	second, err := x.ExtractProduct(productPage, productURL)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))
}
