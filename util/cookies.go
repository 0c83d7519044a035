package util

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aki237/nscjar"
	"golang.org/x/net/publicsuffix"
)

var (
	cookiesCache   = make(map[string][]*http.Cookie)
	cookiesCacheMu sync.Mutex
)

// ParseCookieFile reads a Netscape cookies.txt file. Parsed files
// are cached for the lifetime of the process.
func ParseCookieFile(cookiePath string) ([]*http.Cookie, error) {
	cookiesCacheMu.Lock()
	defer cookiesCacheMu.Unlock()

	if cachedCookies, ok := cookiesCache[cookiePath]; ok {
		return cachedCookies, nil
	}
	cookieFile, err := os.Open(ExpandPath(cookiePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer cookieFile.Close()

	var parser nscjar.Parser
	cookies, err := parser.Unmarshal(cookieFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}
	cookiesCache[cookiePath] = cookies
	return cookies, nil
}

// NewCookieJar returns a jar using public suffix rules, seeded with
// cookies grouped by their domain.
func NewCookieJar(cookies []*http.Cookie) (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	byDomain := make(map[string][]*http.Cookie)
	for _, cookie := range cookies {
		domain := strings.TrimPrefix(cookie.Domain, ".")
		if domain == "" {
			continue
		}
		byDomain[domain] = append(byDomain[domain], cookie)
	}
	for domain, list := range byDomain {
		jar.SetCookies(&url.URL{Scheme: "https", Host: domain, Path: "/"}, list)
	}
	return jar, nil
}
