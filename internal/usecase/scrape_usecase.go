package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/catalog-crawler/internal/assembler"
	"github.com/user/catalog-crawler/internal/browser"
	"github.com/user/catalog-crawler/internal/config"
	"github.com/user/catalog-crawler/internal/crawler"
	"github.com/user/catalog-crawler/internal/domain"
	"github.com/user/catalog-crawler/internal/extractor"
	"github.com/user/catalog-crawler/internal/monitoring"
	"github.com/user/catalog-crawler/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Scraper runs one complete scrape: crawl, then extraction.
type Scraper interface {
	Scrape(ctx context.Context, input domain.ScrapeInput) (*domain.ScrapeResult, error)
}

// DriverFactory opens the browsing context of a run.
type DriverFactory func() (browser.Driver, error)

// StoreFactory returns the capture store of the run identified by runID.
type StoreFactory func(runID string) storage.CaptureStore

type scrapeUseCase struct {
	cfg       *config.Config
	newDriver DriverFactory
	newStore  StoreFactory
	extractor *extractor.Extractor
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	// One browsing context at a time.
	sem *semaphore.Weighted
}

// NewScrapeUseCase creates a new instance of the scrape use case.
func NewScrapeUseCase(cfg *config.Config, newDriver DriverFactory, newStore StoreFactory, m *monitoring.Metrics, l *zap.Logger) Scraper {
	return &scrapeUseCase{
		cfg:       cfg,
		newDriver: newDriver,
		newStore:  newStore,
		extractor: extractor.New(cfg.MarketplaceHost, l, m),
		metrics:   m,
		logger:    l,
		sem:       semaphore.NewWeighted(1),
	}
}

func (u *scrapeUseCase) Scrape(ctx context.Context, input domain.ScrapeInput) (*domain.ScrapeResult, error) {
	if !u.sem.TryAcquire(1) {
		return nil, domain.ErrRunInProgress
	}
	defer u.sem.Release(1)

	query := strings.TrimSpace(input.Query)
	if query == "" {
		query = u.cfg.DefaultQuery
	}
	runID := uuid.NewString()
	log := u.logger.With(zap.String("run_id", runID), zap.String("query", query))
	start := time.Now()

	result, report, err := u.run(ctx, runID, query, log)
	if err != nil {
		u.metrics.ObserveRun("failure", time.Since(start))
		log.Error("scrape failed", zap.Error(err))
		return nil, err
	}

	u.metrics.ObserveRun("success", time.Since(start))
	log.Info("scrape finished",
		zap.Int("captured", report.Captured()),
		zap.Int("skipped", report.Skipped()),
		zap.Int("product_details", len(result.ProductDetails)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (u *scrapeUseCase) run(ctx context.Context, runID, query string, log *zap.Logger) (*domain.ScrapeResult, *crawler.RunReport, error) {
	driver, err := u.newDriver()
	if err != nil {
		return nil, nil, domain.NewFatalRunError("init", "browser did not start", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.Warn("browser close failed", zap.Error(err))
		}
	}()

	store := u.newStore(runID)
	defer func() {
		// The run context may already be cancelled.
		if err := store.Clear(context.Background()); err != nil {
			log.Warn("capture store cleanup failed", zap.Error(err))
		}
	}()

	seq := crawler.NewSequencer(driver, store, crawler.SettingsFromConfig(u.cfg),
		crawler.WithLogger(log),
		crawler.WithMetrics(u.metrics))
	report, err := seq.Run(ctx, query)
	if err != nil {
		return nil, report, err
	}

	result, err := assembler.New(u.extractor, assembler.WithLogger(log)).Assemble(ctx, store)
	if err != nil {
		return nil, report, err
	}
	return result, report, nil
}
