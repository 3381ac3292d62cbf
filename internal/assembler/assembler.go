package assembler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/catalog-crawler/internal/domain"
	"github.com/user/catalog-crawler/internal/extractor"
	"github.com/user/catalog-crawler/internal/storage"
	"go.uber.org/zap"
)

// Assembler runs the extractors over a run's snapshots and merges the
// records into one ScrapeResult.
type Assembler struct {
	extractor *extractor.Extractor
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Assembler)

func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// WithClock overrides the source of the scrape timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func New(x *extractor.Extractor, opts ...Option) *Assembler {
	a := &Assembler{
		extractor: x,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble reads store and builds the result. A missing search snapshot is
// fatal; incomplete product snapshots are left out.
func (a *Assembler) Assemble(ctx context.Context, store storage.CaptureStore) (*domain.ScrapeResult, error) {
	search, err := store.Get(ctx, domain.SearchKey())
	if err != nil {
		if errors.Is(err, domain.ErrCaptureNotFound) {
			return nil, domain.NewFatalRunError("assemble", "missing search snapshot", domain.ErrNoSearchCapture)
		}
		return nil, fmt.Errorf("read search snapshot: %w", err)
	}

	searchResults, err := a.extractor.ExtractSearch(search.HTML, search.SourceURL)
	if err != nil {
		return nil, domain.NewFatalRunError("assemble", "unreadable search snapshot", err)
	}

	indices, err := store.ProductIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product snapshots: %w", err)
	}

	details := make([]domain.ProductDetail, 0, len(indices))
	for _, i := range indices {
		key := domain.ProductKey(i)
		page, err := store.Get(ctx, key)
		if err != nil {
			a.logger.Warn("product snapshot unreadable", zap.String("label", key.String()), zap.Error(err))
			continue
		}
		if !page.Complete() {
			a.logger.Debug("incomplete product snapshot left out", zap.String("label", key.String()))
			continue
		}
		detail, err := a.extractor.ExtractProduct(page.HTML, page.SourceURL)
		if err != nil {
			a.logger.Warn("product snapshot unparsable", zap.String("label", key.String()), zap.Error(err))
			continue
		}
		details = append(details, detail)
	}

	a.logger.Info("scrape result assembled",
		zap.Int("search_products", len(searchResults.Products)),
		zap.Int("product_details", len(details)))

	return &domain.ScrapeResult{
		SearchResults:  searchResults,
		ProductDetails: details,
		ScrapedAt:      a.now().UTC(),
	}, nil
}
