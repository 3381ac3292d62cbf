package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/user/catalog-crawler/internal/browser"
	"github.com/user/catalog-crawler/internal/config"
	"github.com/user/catalog-crawler/internal/domain"
	"github.com/user/catalog-crawler/internal/monitoring"
	"github.com/user/catalog-crawler/internal/storage"
	"github.com/user/catalog-crawler/pkg/utils"
	"go.uber.org/zap"
)

const (
	resultItemSelector   = ".s-result-item"
	cookieAcceptSelector = "#sp-cc-accept"
)

// Any one of these marks a product page as ready.
var readinessSelectors = []string{
	"#productTitle",
	".product-title-word-break",
	".a-size-large.product-title-word-break",
	".product-information",
}

// Settings are the timing and sizing knobs of a run.
type Settings struct {
	Host              string
	NavigationTimeout time.Duration
	ReadinessTimeout  time.Duration
	CookieTimeout     time.Duration
	IdleWait          time.Duration
	ScrollCycles      int
	CandidatePool     int
	MaxProducts       int
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Host:              cfg.MarketplaceHost,
		NavigationTimeout: cfg.NavigationTimeout,
		ReadinessTimeout:  cfg.ReadinessTimeout,
		CookieTimeout:     cfg.CookieTimeout,
		IdleWait:          cfg.IdleWait,
		ScrollCycles:      cfg.ScrollCycles,
		CandidatePool:     cfg.CandidatePool,
		MaxProducts:       cfg.MaxProducts,
	}
}

// RunReport describes how far a run went and what happened to each product.
type RunReport struct {
	Query      string
	SearchURL  string
	State      State
	Candidates []string
	Outcomes   []domain.VisitOutcome
}

func (r *RunReport) count(status domain.VisitStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

func (r *RunReport) Captured() int { return r.count(domain.VisitCaptured) }
func (r *RunReport) Skipped() int { return r.count(domain.VisitSkipped) }

// Sequencer drives one browsing context through a search and its product
// pages, recording snapshots in a capture store.
type Sequencer struct {
	driver   browser.Driver
	store    storage.CaptureStore
	settings Settings
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

type Option func(*Sequencer)

func WithLogger(l *zap.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Sequencer) { s.metrics = m }
}

func NewSequencer(d browser.Driver, store storage.CaptureStore, settings Settings, opts ...Option) *Sequencer {
	s := &Sequencer{
		driver:   d,
		store:    store,
		settings: settings,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs the whole crawl for query. Only failures that leave no search
// results to work with are returned; skipped products are reported in the
// RunReport.
func (s *Sequencer) Run(ctx context.Context, query string) (*RunReport, error) {
	report := &RunReport{
		Query:     query,
		SearchURL: utils.SearchURL(s.settings.Host, query),
		State:     StateInit,
	}

	s.logger.Info("navigating to search page", zap.String("url", report.SearchURL))
	if err := s.driver.Navigate(ctx, report.SearchURL); err != nil {
		return report, s.fatal(report, "search page did not load", err)
	}
	if err := s.driver.WaitFor(ctx, resultItemSelector, s.settings.NavigationTimeout); err != nil {
		return report, s.fatal(report, "no search results", err)
	}
	report.State = StateSearchLoaded
	s.logger.Info("search results loaded")

	s.resolveCookies(ctx)
	report.State = StateCookieResolved

	if err := s.paginate(ctx); err != nil {
		return report, s.fatal(report, "pagination failed", err)
	}
	report.State = StatePaginated

	search, err := s.capture(ctx, domain.SearchKey())
	if err != nil {
		return report, s.fatal(report, "search capture failed", err)
	}
	report.State = StateSearchCaptured

	report.Candidates, err = SelectCandidates(search.HTML, s.settings.Host, s.settings.CandidatePool, s.settings.MaxProducts)
	if err != nil {
		return report, s.fatal(report, "candidate selection failed", err)
	}
	s.logger.Info("product candidates selected", zap.Int("count", len(report.Candidates)))

	report.State = StateVisitingProducts
	for i, url := range report.Candidates {
		report.Outcomes = append(report.Outcomes, s.visit(ctx, i+1, url))
		if err := ctx.Err(); err != nil {
			return report, s.fatal(report, "run cancelled", err)
		}
	}

	report.State = StateDone
	s.logger.Info("crawl finished",
		zap.Int("captured", report.Captured()),
		zap.Int("skipped", report.Skipped()))
	return report, nil
}

func (s *Sequencer) fatal(report *RunReport, message string, err error) error {
	ferr := domain.NewFatalRunError(report.State.String(), message, err)
	s.logger.Error("crawl aborted",
		zap.String("state", report.State.String()),
		zap.String("query", report.Query),
		zap.Error(ferr))
	return ferr
}

// resolveCookies dismisses the consent banner when present. It never fails.
func (s *Sequencer) resolveCookies(ctx context.Context) {
	exists, err := s.driver.ElementExists(ctx, cookieAcceptSelector)
	if err != nil {
		s.logger.Warn("cookie banner check failed", zap.Error(err))
		return
	}
	if !exists {
		return
	}
	s.logger.Info("accepting cookies")
	if err := s.driver.Click(ctx, cookieAcceptSelector); err != nil {
		s.logger.Warn("cookie banner click failed", zap.Error(err))
		return
	}
	if err := s.driver.WaitForHidden(ctx, cookieAcceptSelector, s.settings.CookieTimeout); err != nil {
		s.logger.Warn("cookie banner still visible", zap.Error(err))
	}
}

// paginate runs a fixed number of scroll and settle cycles. The cycle count
// is a time budget; there is no check for new content.
func (s *Sequencer) paginate(ctx context.Context) error {
	s.logger.Info("scrolling to load more results", zap.Int("cycles", s.settings.ScrollCycles))
	for i := 0; i < s.settings.ScrollCycles; i++ {
		if err := s.driver.ScrollTo(ctx, browser.PositionBottom); err != nil {
			return fmt.Errorf("scroll cycle %d: %w", i+1, err)
		}
		if err := s.driver.WaitIdle(ctx, s.settings.IdleWait); err != nil {
			return fmt.Errorf("scroll cycle %d: %w", i+1, err)
		}
	}
	return nil
}

// capture stores the current document and its URL under key.
func (s *Sequencer) capture(ctx context.Context, key domain.CaptureKey) (domain.CapturedPage, error) {
	html, err := s.driver.CurrentDocumentHTML(ctx)
	if err != nil {
		return domain.CapturedPage{}, err
	}
	url, err := s.driver.CurrentURL(ctx)
	if err != nil {
		return domain.CapturedPage{}, err
	}
	page := domain.CapturedPage{Label: key.String(), HTML: html, SourceURL: url}
	if err := s.store.Put(ctx, key, page); err != nil {
		return domain.CapturedPage{}, err
	}
	s.logger.Info("document captured", zap.String("label", page.Label), zap.String("url", url))
	return page, nil
}

// visit navigates to one product and captures it. Every failure becomes a
// Skipped outcome.
func (s *Sequencer) visit(ctx context.Context, index int, url string) (outcome domain.VisitOutcome) {
	log := s.logger.With(zap.Int("index", index), zap.String("url", url))
	defer func() {
		if p := recover(); p != nil {
			outcome = s.skip(log, index, url, domain.NewNavigationError("product_visit", fmt.Errorf("panic: %v", p)))
		}
	}()

	log.Info("navigating to product")
	if err := s.driver.Navigate(ctx, url); err != nil {
		return s.skip(log, index, url, domain.NewNavigationError("navigate", err))
	}

	selector, err := awaitReady(ctx, s.driver, readinessSelectors, s.settings.ReadinessTimeout)
	if err != nil {
		return s.skip(log, index, url, domain.NewReadinessTimeout(url, err))
	}
	log.Debug("product page ready", zap.String("selector", selector))

	if err := s.driver.WaitIdle(ctx, s.settings.IdleWait); err != nil {
		return s.skip(log, index, url, domain.NewNavigationError("settle", err))
	}
	if _, err := s.capture(ctx, domain.ProductKey(index)); err != nil {
		return s.skip(log, index, url, domain.NewNavigationError("capture", err))
	}

	s.metrics.IncProduct(string(domain.VisitCaptured))
	return domain.Captured(index, url)
}

func (s *Sequencer) skip(log *zap.Logger, index int, url string, err error) domain.VisitOutcome {
	log.Warn("product skipped", zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
	s.metrics.IncProduct(string(domain.VisitSkipped))
	return domain.Skipped(index, url, err.Error())
}
