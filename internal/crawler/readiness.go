package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/catalog-crawler/internal/browser"
)

// awaitReady races WaitFor across selectors. The first selector found wins
// and the remaining waits are cancelled; it returns once every waiter has
// exited. It fails only when no selector appears within timeout.
func awaitReady(ctx context.Context, d browser.Driver, selectors []string, timeout time.Duration) (string, error) {
	raceCtx, cancel := context.WithTimeout(ctx, timeout)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	type result struct {
		selector string
		err      error
	}
	// Buffered so losing waiters never block.
	results := make(chan result, len(selectors))
	for _, sel := range selectors {
		wg.Add(1)
		go func(sel string) {
			defer wg.Done()
			results <- result{selector: sel, err: d.WaitFor(raceCtx, sel, timeout)}
		}(sel)
	}

	errs := make([]error, 0, len(selectors))
	for range selectors {
		r := <-results
		if r.err == nil {
			return r.selector, nil
		}
		errs = append(errs, r.err)
	}
	return "", fmt.Errorf("no readiness signal within %s: %w", timeout, errors.Join(errs...))
}
