package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"
)

// AsyncNetworkManager is the shared outbound HTTP client: proxy rotation,
// retries with backoff, and context cancellation.
type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger

	mu     sync.RWMutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log.Named("Proxy")),
		Logger:       log,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) httpClient() *http.Client {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	return nm.client
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	client := nm.createClient()

	nm.mu.Lock()
	nm.client = client
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()
	finalUrl := reqUrl.String()

	attempt := 0
	return helpers.RetryWithBackoff(ctx, nm.Config.Network.MaxRetries+1, 500*time.Millisecond, func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			nm.rotateProxy()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
		if err != nil {
			return nil, err
		}
		// Use dynamic User-Agent
		req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())

		body, err := nm.do(req)
		if err != nil {
			nm.Logger.Debug("GET %s failed (attempt %d): %v", reqUrl.Path, attempt, err)
		}
		return body, err
	})
}

// -----------------------------------------------------------------------------

// Post sends one request body. Generation endpoints are not idempotent so
// only transport errors, 429 and 5xx are retried.
func (nm *AsyncNetworkManager) Post(ctx context.Context, urlStr string, headers map[string]string, body []byte) ([]byte, error) {
	return helpers.RetryWithBackoff(ctx, nm.Config.Network.MaxRetries+1, time.Second, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return nm.do(req)
	})
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(req *http.Request) ([]byte, error) {
	resp, err := nm.httpClient().Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &helpers.NetworkError{FinnieError: helpers.FinnieError{
			Message: fmt.Sprintf("%s %s", req.Method, req.URL.Host),
			Cause:   err,
		}}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", req.URL.Path, helpers.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &helpers.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
