package network

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"github.com/go-resty/resty/v2"
)

// NetworkManager performs GET requests through a shared resty client with
// user-agent rotation and optional proxies.
type NetworkManager struct {
	Config   *models.MConfig
	Identity interfaces.IRequestIdentity
	Client   *resty.Client
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

// NewNetworkManager builds a manager whose requests time out after timeout.
func NewNetworkManager(cfg *models.MConfig, timeout time.Duration, log *logger.Logger) *NetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &NetworkManager{
		Config:   cfg,
		Identity: helpers.NewRequestIdentity(proxies, cfg.Network.UserAgent, log),
		Logger:   log,
	}
	// The client is shared by concurrent requests; the proxy is read from
	// Identity per request and never set on the client.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nm.proxyFor

	nm.Client = resty.New().
		SetTransport(transport).
		SetTimeout(timeout).
		SetHeader("Accept", "text/html,application/json;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) proxyFor(*http.Request) (*url.URL, error) {
	raw := nm.Identity.Proxy()
	if raw == "" {
		return nil, nil
	}
	return url.Parse(raw)
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) rotateProxy() {
	if proxy, ok := nm.Identity.NextProxy(); ok {
		nm.Logger.Debug("Next requests leave through %s", proxy)
	}
}

// -----------------------------------------------------------------------------

// Get performs a single GET request. Transport failures and blocked
// responses are UpstreamUnavailable; other non-2xx statuses come back as a
// wrapped *helpers.StatusError so callers can interpret them.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	resp, err := nm.Client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeader("User-Agent", nm.Identity.UserAgent()).
		Get(urlStr)
	if err != nil {
		nm.Logger.Debug("Request to %s failed: %v", urlStr, err)
		return nil, helpers.NewUpstreamError(fmt.Sprintf("request to %s failed", urlStr), err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusTooManyRequests || status == http.StatusForbidden:
		nm.Logger.Info("Request blocked (%d). Rotating proxy.", status)
		nm.rotateProxy()
		return nil, helpers.NewUpstreamError(fmt.Sprintf("request to %s blocked", urlStr), &helpers.StatusError{StatusCode: status, Body: resp.Body()})
	case status >= http.StatusInternalServerError:
		return nil, helpers.NewUpstreamError(fmt.Sprintf("upstream error from %s", urlStr), &helpers.StatusError{StatusCode: status, Body: resp.Body()})
	case !resp.IsSuccess():
		return nil, fmt.Errorf("request to %s: %w", urlStr, &helpers.StatusError{StatusCode: status, Body: resp.Body()})
	}

	return resp.Body(), nil
}
