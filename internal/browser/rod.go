package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

type RodOptions struct {
	Headless   bool
	BrowserBin string
	UserAgent  string
	Timeout    time.Duration
}

// RodDriver drives a single page through go-rod.
type RodDriver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
	logger   *zap.Logger
}

func NewRodDriver(opts RodOptions, logger *zap.Logger) (*RodDriver, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true)
	if opts.BrowserBin != "" {
		l = l.Bin(opts.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	logger.Debug("browser launched", zap.String("control_url", controlURL))

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	return &RodDriver{
		launcher: l,
		browser:  browser,
		page:     page,
		timeout:  opts.Timeout,
		logger:   logger,
	}, nil
}

func (d *RodDriver) bound(ctx context.Context, timeout time.Duration) *rod.Page {
	return d.page.Context(ctx).Timeout(timeout)
}

func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	p := d.bound(ctx, d.timeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

func (d *RodDriver) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if _, err := d.bound(ctx, timeout).Element(selector); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (d *RodDriver) WaitForHidden(ctx context.Context, selector string, timeout time.Duration) error {
	js := fmt.Sprintf(`() => { const el = document.querySelector(%s); return !el || el.offsetParent === null; }`, strconv.Quote(selector))
	if err := d.bound(ctx, timeout).Wait(rod.Eval(js)); err != nil {
		return fmt.Errorf("wait hidden %q: %w", selector, err)
	}
	return nil
}

func (d *RodDriver) ElementExists(ctx context.Context, selector string) (bool, error) {
	has, _, err := d.bound(ctx, d.timeout).Has(selector)
	if err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	return has, nil
}

func (d *RodDriver) Click(ctx context.Context, selector string) error {
	el, err := d.bound(ctx, d.timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *RodDriver) ScrollTo(ctx context.Context, position string) error {
	script, err := scrollScript(position)
	if err != nil {
		return err
	}
	_, err = d.bound(ctx, d.timeout).Eval("() => " + script)
	return err
}

func (d *RodDriver) WaitIdle(ctx context.Context, dur time.Duration) error {
	return sleep(ctx, dur)
}

func (d *RodDriver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.bound(ctx, d.timeout).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (d *RodDriver) CurrentDocumentHTML(ctx context.Context) (string, error) {
	html, err := d.bound(ctx, d.timeout).HTML()
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

func (d *RodDriver) Close() error {
	err := d.browser.Close()
	d.launcher.Cleanup()
	return err
}
