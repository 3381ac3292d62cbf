package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-crawler/internal/monitoring"
	"go.uber.org/zap"
)

// ResultItemSelector matches search result items that carry a product id.
const ResultItemSelector = `.s-result-item[data-asin]:not([data-asin=""])`

// Extractor turns captured markup into search and product records.
type Extractor struct {
	host    string
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New returns an Extractor building canonical URLs on host.
func New(host string, logger *zap.Logger, metrics *monitoring.Metrics) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{host: host, logger: logger, metrics: metrics}
}

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// record scopes field diagnostics to one page.
type record struct {
	x   *Extractor
	url string
}

func (r record) fault(name string, err error) {
	r.x.logger.Warn("field extraction failed",
		zap.String("field", name),
		zap.String("url", r.url),
		zap.Error(err))
	r.x.metrics.IncFieldFault(name)
}

// field evaluates one field. An error or a panic degrades the field to empty
// and leaves the rest of the record untouched.
func field[T any](r record, name string, empty T, fn func() (T, error)) (out T) {
	defer func() {
		if p := recover(); p != nil {
			r.fault(name, fmt.Errorf("panic: %v", p))
			out = empty
		}
	}()
	v, err := fn()
	if err != nil {
		r.fault(name, err)
		return empty
	}
	return v
}

// plain adapts an infallible accessor to field.
func plain[T any](fn func() T) func() (T, error) {
	return func() (T, error) { return fn(), nil }
}
