package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/catalog-crawler/internal/browser"
	"github.com/user/catalog-crawler/internal/config"
	"github.com/user/catalog-crawler/internal/domain"
	"github.com/user/catalog-crawler/internal/monitoring"
	"github.com/user/catalog-crawler/internal/storage"
	"go.uber.org/zap"
)

// stubDriver serves fixed markup: a search page with one item whose product
// page is ready immediately.
type stubDriver struct {
	mu      sync.Mutex
	current string
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
	closed  bool
}

var _ browser.Driver = (*stubDriver)(nil)

func (d *stubDriver) Navigate(ctx context.Context, url string) error {
	if d.gate != nil {
		d.once.Do(func() { close(d.entered) })
		select {
		case <-d.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d.mu.Lock()
	d.current = url
	d.mu.Unlock()
	return nil
}

func (d *stubDriver) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	switch selector {
	case ".s-result-item", "#productTitle":
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *stubDriver) WaitForHidden(context.Context, string, time.Duration) error { return nil }
func (d *stubDriver) ElementExists(context.Context, string) (bool, error) { return false, nil }
func (d *stubDriver) Click(context.Context, string) error { return nil }
func (d *stubDriver) ScrollTo(context.Context, string) error { return nil }
func (d *stubDriver) WaitIdle(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func (d *stubDriver) CurrentURL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, nil
}

func (d *stubDriver) CurrentDocumentHTML(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "https://www.amazon.fr/dp/B0ONE" {
		return `<html><body><span id="productTitle">Phone One</span></body></html>`, nil
	}
	return `<html><body><div class="s-result-item" data-asin="B0ONE"><h2><a class="a-link-normal">Phone One</a></h2></div></body></html>`, nil
}

func (d *stubDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.IdleWait = 0
	cfg.ReadinessTimeout = 50 * time.Millisecond
	return cfg
}

func memoryStores() StoreFactory {
	return func(string) storage.CaptureStore { return storage.NewMemoryStore() }
}

func TestScrapeUsesDefaultQuery(t *testing.T) {
	d := &stubDriver{}
	metrics := monitoring.NewMetrics()
	uc := NewScrapeUseCase(testConfig(), func() (browser.Driver, error) { return d, nil }, memoryStores(), metrics, zap.NewNop())

	res, err := uc.Scrape(context.Background(), domain.ScrapeInput{})
	require.NoError(t, err)

	assert.Equal(t, "https://www.amazon.fr/s?k=smartphone", res.SearchResults.SearchURL)
	require.Len(t, res.SearchResults.Products, 1)
	require.Len(t, res.ProductDetails, 1)
	assert.Equal(t, "Phone One", res.ProductDetails[0].Title)
	assert.Equal(t, "B0ONE", res.ProductDetails[0].ASIN)
	assert.True(t, d.closed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("success")))
}

func TestScrapeRejectsConcurrentRuns(t *testing.T) {
	d := &stubDriver{gate: make(chan struct{}), entered: make(chan struct{})}
	uc := NewScrapeUseCase(testConfig(), func() (browser.Driver, error) { return d, nil }, memoryStores(), nil, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := uc.Scrape(context.Background(), domain.ScrapeInput{Query: "tv"})
		done <- err
	}()

	<-d.entered
	_, err := uc.Scrape(context.Background(), domain.ScrapeInput{Query: "radio"})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)

	close(d.gate)
	require.NoError(t, <-done)
}

func TestScrapeBrowserStartFailureIsFatal(t *testing.T) {
	metrics := monitoring.NewMetrics()
	uc := NewScrapeUseCase(testConfig(), func() (browser.Driver, error) {
		return nil, errors.New("chrome not found")
	}, memoryStores(), metrics, zap.NewNop())

	_, err := uc.Scrape(context.Background(), domain.ScrapeInput{Query: "tv"})
	require.Error(t, err)
	assert.True(t, domain.IsFatal(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("failure")))
}

func TestScrapeClearsStoreAfterRun(t *testing.T) {
	d := &stubDriver{}
	store := storage.NewMemoryStore()
	uc := NewScrapeUseCase(testConfig(), func() (browser.Driver, error) { return d, nil },
		func(string) storage.CaptureStore { return store }, nil, zap.NewNop())

	_, err := uc.Scrape(context.Background(), domain.ScrapeInput{Query: "tv"})
	require.NoError(t, err)

	_, err = store.Get(context.Background(), domain.SearchKey())
	assert.ErrorIs(t, err, domain.ErrCaptureNotFound)
}
