package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCandidatesCapsAndSkipsEmptyASIN(t *testing.T) {
	html := `<html><body>
<div class="s-result-item" data-asin="">banner</div>
<div class="s-result-item" data-asin="A1"></div>
<div class="s-result-item">no attribute</div>
<div class="s-result-item" data-asin="A2"></div>
<div class="s-result-item" data-asin="A3"></div>
<div class="s-result-item" data-asin="A4"></div>
<div class="s-result-item" data-asin="A5"></div>
<div class="s-result-item" data-asin="A6"></div>
<div class="s-result-item" data-asin="A7"></div>
</body></html>`

	urls, err := SelectCandidates(html, testHost, 10, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.amazon.fr/dp/A1",
		"https://www.amazon.fr/dp/A2",
		"https://www.amazon.fr/dp/A3",
		"https://www.amazon.fr/dp/A4",
		"https://www.amazon.fr/dp/A5",
	}, urls)
}

func TestSelectCandidatesPoolLimitsInspection(t *testing.T) {
	urls, err := SelectCandidates(searchHTML("A1", "A2", "A3", "A4"), testHost, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.amazon.fr/dp/A1", "https://www.amazon.fr/dp/A2"}, urls)
}

func TestSelectCandidatesEmpty(t *testing.T) {
	urls, err := SelectCandidates("<html></html>", testHost, 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}
