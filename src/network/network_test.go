package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
)

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		if r.URL.Query().Get("range") != "1mo" {
			t.Errorf("range = %q", r.URL.Query().Get("range"))
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newManager() *NetworkManager {
	return NewNetworkManager(&models.MConfig{}, 5*time.Second, logger.NewLogger("ERROR", "test"))
}

func TestGetReturnsBody(t *testing.T) {
	url := serve(t, http.StatusOK, `{"ok":true}`)
	body, err := newManager().Get(context.Background(), url, map[string]string{"range": "1mo"})
	helpers.AssertNoError(t, "get", err)
	helpers.AssertAreEqual(t, "body", `{"ok":true}`, string(body))
}

func TestGetClassifiesStatuses(t *testing.T) {
	cases := []struct {
		status   int
		upstream bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusForbidden, true},
		{http.StatusBadGateway, true},
		{http.StatusNotFound, false},
	}
	for _, tc := range cases {
		url := serve(t, tc.status, "")
		_, err := newManager().Get(context.Background(), url, map[string]string{"range": "1mo"})
		helpers.AssertAreEqual(t, http.StatusText(tc.status), tc.upstream, helpers.IsUpstreamUnavailable(err))
		helpers.AssertAreEqual(t, "status", tc.status, helpers.StatusCode(err))
	}
}

func TestGetTransportFailure(t *testing.T) {
	_, err := newManager().Get(context.Background(), "http://127.0.0.1:1", nil)
	helpers.AssertAreEqual(t, "upstream", true, helpers.IsUpstreamUnavailable(err))
}

func TestConcurrentBlockedRequestsRotateProxies(t *testing.T) {
	var proxied atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "quotes.invalid" {
			proxied.Add(1)
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := &models.MConfig{}
	cfg.Network.Enabled = true
	cfg.Network.Proxies = []string{srv.URL, strings.Replace(srv.URL, "127.0.0.1", "localhost", 1)}
	nm := NewNetworkManager(cfg, 5*time.Second, logger.NewLogger("ERROR", "test"))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = nm.Get(context.Background(), "http://quotes.invalid/chart", nil)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		helpers.AssertAreEqual(t, "blocked", true, helpers.IsUpstreamUnavailable(err))
		helpers.AssertAreEqual(t, "status", http.StatusTooManyRequests, helpers.StatusCode(err))
	}
	helpers.AssertAreEqual(t, "all through a proxy", int32(workers), proxied.Load())

	// an even number of rotations over two proxies lands back on the first
	helpers.AssertAreEqual(t, "proxy", srv.URL, nm.Identity.Proxy())
}
