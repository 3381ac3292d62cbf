package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/user/catalog-crawler/internal/config"
	"go.uber.org/zap"
)

// Scroll positions understood by ScrollTo.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// Driver is the browser capability the crawler consumes. Implementations
// drive one browsing context. WaitFor must tolerate concurrent calls, since
// readiness is raced across several selectors.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	WaitForHidden(ctx context.Context, selector string, timeout time.Duration) error
	ElementExists(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	ScrollTo(ctx context.Context, position string) error
	WaitIdle(ctx context.Context, d time.Duration) error
	CurrentURL(ctx context.Context) (string, error)
	CurrentDocumentHTML(ctx context.Context) (string, error)
	Close() error
}

// New starts the engine selected by cfg.BrowserEngine.
func New(cfg *config.Config, logger *zap.Logger) (Driver, error) {
	ua := NewUserAgentPicker(cfg.UserAgent).Pick()
	switch cfg.BrowserEngine {
	case config.EngineChromedp:
		return NewChromedpDriver(ChromedpOptions{
			Headless:   cfg.BrowserHeadless,
			BrowserBin: cfg.BrowserBin,
			UserAgent:  ua,
			Timeout:    cfg.NavigationTimeout,
		}, logger)
	case config.EngineRod:
		return NewRodDriver(RodOptions{
			Headless:   cfg.BrowserHeadless,
			BrowserBin: cfg.BrowserBin,
			UserAgent:  ua,
			Timeout:    cfg.NavigationTimeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown browser engine %q", cfg.BrowserEngine)
	}
}

func scrollScript(position string) (string, error) {
	switch position {
	case PositionBottom:
		return `window.scrollTo(0, document.body.scrollHeight)`, nil
	case PositionTop:
		return `window.scrollTo(0, 0)`, nil
	default:
		return "", fmt.Errorf("unknown scroll position %q", position)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
