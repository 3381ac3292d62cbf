package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/catalog-crawler/internal/browser"
)

// fakePage is what the fake browser shows at one URL.
type fakePage struct {
	html     string
	present  map[string]bool
	readyIn  time.Duration
	navErr   error
	panicNav bool
}

// fakeDriver is a scripted single-tab browser.
type fakeDriver struct {
	mu        sync.Mutex
	pages     map[string]*fakePage
	current   string
	navigated []string
	clicks    []string
	scrolls   int
	idles     int
	clickErr  error
	scrollErr error
}

var _ browser.Driver = (*fakeDriver)(nil)

func newFakeDriver() *fakeDriver {
	return &fakeDriver{pages: make(map[string]*fakePage)}
}

func (f *fakeDriver) page(url string, html string, selectors ...string) *fakePage {
	p := &fakePage{html: html, present: make(map[string]bool)}
	for _, s := range selectors {
		p.present[s] = true
	}
	f.pages[url] = p
	return p
}

func (f *fakeDriver) currentPage() *fakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[f.current]
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	f.navigated = append(f.navigated, url)
	p := f.pages[url]
	f.mu.Unlock()
	if p != nil && p.panicNav {
		panic("driver crashed")
	}
	if p != nil && p.navErr != nil {
		return p.navErr
	}
	f.mu.Lock()
	f.current = url
	f.mu.Unlock()
	return nil
}

func (f *fakeDriver) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	p := f.currentPage()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	f.mu.Lock()
	found := p != nil && p.present[selector]
	f.mu.Unlock()
	if !found {
		<-ctx.Done()
		return ctx.Err()
	}
	select {
	case <-time.After(p.readyIn):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeDriver) WaitForHidden(ctx context.Context, selector string, timeout time.Duration) error {
	f.mu.Lock()
	p := f.pages[f.current]
	visible := p != nil && p.present[selector]
	f.mu.Unlock()
	if visible {
		return errors.New("still visible")
	}
	return nil
}

func (f *fakeDriver) ElementExists(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.pages[f.current]
	return p != nil && p.present[selector], nil
}

func (f *fakeDriver) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, selector)
	if f.clickErr != nil {
		return f.clickErr
	}
	if p := f.pages[f.current]; p != nil {
		delete(p.present, selector)
	}
	return nil
}

func (f *fakeDriver) ScrollTo(ctx context.Context, position string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls++
	return f.scrollErr
}

func (f *fakeDriver) WaitIdle(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.idles++
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeDriver) CurrentDocumentHTML(ctx context.Context) (string, error) {
	p := f.currentPage()
	if p == nil {
		return "", errors.New("blank tab")
	}
	return p.html, nil
}

func (f *fakeDriver) Close() error { return nil }
