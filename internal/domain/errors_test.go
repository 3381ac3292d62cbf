package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrawlErrorUnwrap(t *testing.T) {
	err := NewReadinessTimeout("https://www.amazon.fr/dp/B0TEST", context.DeadlineExceeded)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, KindReadinessTimeout, KindOf(err))
	assert.False(t, IsFatal(err))
	assert.Contains(t, err.Error(), "readiness_timeout")
}

func TestKindOfWrapped(t *testing.T) {
	fatal := NewFatalRunError("search_loaded", "no result items", errors.New("timeout"))
	wrapped := fmt.Errorf("run: %w", fatal)

	assert.True(t, IsFatal(wrapped))
	assert.Equal(t, KindFatalRun, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestCaptureKeyString(t *testing.T) {
	assert.Equal(t, "search_results", SearchKey().String())
	assert.Equal(t, "product_3", ProductKey(3).String())
}

func TestCapturedPageComplete(t *testing.T) {
	assert.True(t, CapturedPage{HTML: "<html></html>", SourceURL: "https://x"}.Complete())
	assert.False(t, CapturedPage{HTML: "<html></html>"}.Complete())
	assert.False(t, CapturedPage{SourceURL: "https://x"}.Complete())
}
