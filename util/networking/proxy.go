package networking

import (
	"net/http"
	"net/url"

	"gdl/models"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpproxy"
)

// proxyFunc selects the proxy for a request from the extractor's
// proxy settings, using the same no_proxy rules as the environment
// variables (hosts, .domain suffixes, CIDR ranges, ports, "*").
// https requests fall back to the http proxy when only that one is set.
func proxyFunc(cfg *models.ExtractorConfig) func(*http.Request) (*url.URL, error) {
	proxyConfig := &httpproxy.Config{
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		NoProxy:    cfg.NoProxy,
	}
	if proxyConfig.HTTPSProxy == "" {
		proxyConfig.HTTPSProxy = proxyConfig.HTTPProxy
	}
	resolve := proxyConfig.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		proxyURL, err := resolve(req.URL)
		if err != nil {
			zap.S().Warnf("invalid proxy for %s: %v", req.URL.Host, err)
			return nil, err
		}
		return proxyURL, nil
	}
}
