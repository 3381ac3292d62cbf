package browser

import (
	"math/rand"
	"sync"
	"time"
)

var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}

// UserAgentPicker returns the configured user agent, or a random desktop
// Chrome one when none is configured.
type UserAgentPicker struct {
	fixed      string
	userAgents []string
	mu         sync.Mutex
	rnd        *rand.Rand
}

func NewUserAgentPicker(fixed string) *UserAgentPicker {
	return &UserAgentPicker{
		fixed:      fixed,
		userAgents: desktopUserAgents,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *UserAgentPicker) Pick() string {
	if p.fixed != "" {
		return p.fixed
	}
	if len(p.userAgents) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userAgents[p.rnd.Intn(len(p.userAgents))]
}
