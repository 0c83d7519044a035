package networking

import (
	"net"
	"net/http"
	"sync"
	"time"

	"gdl/config"
	"gdl/models"
	"gdl/util"

	"go.uber.org/zap"
)

var (
	defaultClient      *http.Client
	defaultClientOnce  sync.Once
	extractorClients   = make(map[string]models.HTTPClient)
	extractorClientsMu sync.Mutex
)

func GetDefaultHTTPClient() *http.Client {
	defaultClientOnce.Do(func() {
		defaultClient = &http.Client{
			Transport: GetBaseTransport(),
			Timeout:   60 * time.Second,
		}
	})
	return defaultClient
}

func GetBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    false,
	}
}

// GetExtractorHTTPClient returns the client shared by every instance
// of extractor, built once from its config.
func GetExtractorHTTPClient(extractor *models.Extractor) models.HTTPClient {
	extractorClientsMu.Lock()
	defer extractorClientsMu.Unlock()

	if client, exists := extractorClients[extractor.CodeName]; exists {
		return client
	}
	cfg := config.GetExtractorConfig(extractor)

	var client models.HTTPClient
	if cfg.EdgeProxyURL != "" {
		client = NewEdgeProxyClientFromConfig(cfg)
	} else {
		client = NewClientFromConfig(cfg)
	}
	extractorClients[extractor.CodeName] = client
	return client
}

// NewClientFromConfig builds a client with the configured proxies and
// a cookie jar seeded from the configured cookies file.
func NewClientFromConfig(cfg *models.ExtractorConfig) *http.Client {
	transport := GetBaseTransport()
	if cfg.HTTPProxy != "" || cfg.HTTPSProxy != "" {
		transport.Proxy = proxyFunc(cfg)
	}
	client := &http.Client{Transport: transport}

	var cookies []*http.Cookie
	if cfg.Cookies != "" {
		parsed, err := util.ParseCookieFile(cfg.Cookies)
		if err != nil {
			zap.S().Warnf("failed to load cookies from %s: %v", cfg.Cookies, err)
		} else {
			cookies = parsed
		}
	}
	jar, err := util.NewCookieJar(cookies)
	if err != nil {
		zap.S().Warnf("cookie jar disabled: %v", err)
	} else {
		client.Jar = jar
	}
	return client
}
