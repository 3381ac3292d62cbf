package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

type ChromedpOptions struct {
	Headless   bool
	BrowserBin string
	UserAgent  string
	// Timeout bounds navigation and the other non-waiting operations.
	Timeout time.Duration
}

// ChromedpDriver drives a single Chrome tab through chromedp.
type ChromedpDriver struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

func NewChromedpDriver(opts ChromedpOptions, logger *zap.Logger) (*ChromedpDriver, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.BrowserBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BrowserBin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &ChromedpDriver{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		timeout:     opts.Timeout,
		logger:      logger,
	}, nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
// Cancelling the derived context leaves the tab open.
func (d *ChromedpDriver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (d *ChromedpDriver) Navigate(ctx context.Context, url string) error {
	if err := d.run(ctx, d.timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (d *ChromedpDriver) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := d.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

// WaitForHidden returns once the element is detached or no longer rendered.
func (d *ChromedpDriver) WaitForHidden(ctx context.Context, selector string, timeout time.Duration) error {
	var hidden bool
	err := d.run(ctx, timeout, chromedp.Poll(hiddenExpression(selector), &hidden, chromedp.WithPollingInterval(100*time.Millisecond)))
	if err != nil {
		return fmt.Errorf("wait hidden %q: %w", selector, err)
	}
	return nil
}

func (d *ChromedpDriver) ElementExists(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	err := d.run(ctx, d.timeout, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	return len(nodes) > 0, nil
}

func (d *ChromedpDriver) Click(ctx context.Context, selector string) error {
	if err := d.run(ctx, d.timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (d *ChromedpDriver) ScrollTo(ctx context.Context, position string) error {
	script, err := scrollScript(position)
	if err != nil {
		return err
	}
	return d.run(ctx, d.timeout, chromedp.Evaluate(script, nil))
}

func (d *ChromedpDriver) WaitIdle(ctx context.Context, dur time.Duration) error {
	return sleep(ctx, dur)
}

func (d *ChromedpDriver) CurrentURL(ctx context.Context) (string, error) {
	var u string
	if err := d.run(ctx, d.timeout, chromedp.Location(&u)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return u, nil
}

func (d *ChromedpDriver) CurrentDocumentHTML(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, d.timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

func (d *ChromedpDriver) Close() error {
	err := chromedp.Cancel(d.tabCtx)
	d.tabCancel()
	d.allocCancel()
	return err
}

func hiddenExpression(selector string) string {
	return fmt.Sprintf(`(() => { const el = document.querySelector(%s); return !el || el.offsetParent === null; })()`, strconv.Quote(selector))
}
