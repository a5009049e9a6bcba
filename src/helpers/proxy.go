package helpers

import (
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"

	"stock-predictor/src/logger"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// -----------------------------------------------------------------------------

// RequestIdentity picks user agents and walks a ring of configured proxies.
type RequestIdentity struct {
	mu      sync.Mutex
	proxies []string
	current int
	agents  []string
	log     *logger.Logger
}

// -----------------------------------------------------------------------------

// NewRequestIdentity drops malformed proxies. A non-empty userAgent pins the
// agent instead of sampling the browser list.
func NewRequestIdentity(proxies []string, userAgent string, log *logger.Logger) *RequestIdentity {
	ri := &RequestIdentity{agents: defaultUserAgents, log: log}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		ri.agents = []string{ua}
	}
	for _, p := range proxies {
		if ValidateProxy(p) {
			ri.proxies = append(ri.proxies, FormatProxy(p))
		}
	}
	return ri
}

// -----------------------------------------------------------------------------

func (ri *RequestIdentity) Proxy() string {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	if len(ri.proxies) == 0 {
		return ""
	}
	return ri.proxies[ri.current]
}

// -----------------------------------------------------------------------------

func (ri *RequestIdentity) NextProxy() (string, bool) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	if len(ri.proxies) < 2 {
		return "", false
	}
	ri.current = (ri.current + 1) % len(ri.proxies)
	if ri.log != nil {
		ri.log.Debug("Switched to proxy %s", ri.proxies[ri.current])
	}
	return ri.proxies[ri.current], true
}

// -----------------------------------------------------------------------------

func (ri *RequestIdentity) UserAgent() string {
	return ri.agents[rand.IntN(len(ri.agents))]
}

// -----------------------------------------------------------------------------

// ValidateProxy accepts host:port or an http, https or socks5 URL.
func ValidateProxy(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	u, err := url.Parse(FormatProxy(raw))
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return true
	}
	return false
}

// -----------------------------------------------------------------------------

// FormatProxy defaults bare host:port entries to http.
func FormatProxy(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}
