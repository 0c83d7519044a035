package networking

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"gdl/config"
	"gdl/enums"
	"gdl/models"
	"gdl/util"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultRetryDelay = time.Second

// Session performs the requests of one extractor instance. It adds
// default headers, waits between requests when sleep-request is set
// and retries network errors, 429 and 5xx responses.
type Session struct {
	Client     models.HTTPClient
	Headers    map[string]string
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration

	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

// NewSession builds a session for extractor from its resolved config.
func NewSession(extractor *models.Extractor) *Session {
	cfg := config.GetExtractorConfig(extractor)
	session := NewSessionFromConfig(cfg, GetExtractorHTTPClient(extractor))
	session.log = zap.S().Named(extractor.CodeName)
	return session
}

func NewSessionFromConfig(cfg *models.ExtractorConfig, client models.HTTPClient) *Session {
	if client == nil {
		client = GetDefaultHTTPClient()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = util.ChromeUA
	}
	session := &Session{
		Client: client,
		Headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.5",
		},
		Retries:    cfg.Retries,
		RetryDelay: defaultRetryDelay,
		Timeout:    cfg.Timeout,
		log:        zap.S(),
	}
	if cfg.SleepRequest > 0 {
		interval := time.Duration(cfg.SleepRequest * float64(time.Second))
		session.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return session
}

// HTTPClient exposes the underlying client, so downloads share the
// session's proxies and cookies.
func (s *Session) HTTPClient() models.HTTPClient {
	return s.Client
}

// Cookies returns the cookies the session would send to rawURL.
func (s *Session) Cookies(rawURL string) []*http.Cookie {
	client, ok := s.Client.(*http.Client)
	if !ok || client.Jar == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return client.Jar.Cookies(u)
}

func (s *Session) Request(
	ctx context.Context,
	rawURL string,
	opts *models.RequestOptions,
) (*models.Response, error) {
	if opts == nil {
		opts = &models.RequestOptions{}
	}
	client := s.clientFor(opts)

	for attempt := 0; ; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		resp, err := s.do(ctx, client, rawURL, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if util.IsKind(err, enums.ErrorKindInput) {
				return nil, err
			}
			if attempt < s.Retries {
				s.log.Warnf("%v (%d/%d)", err, attempt+1, s.Retries)
				if err := s.wait(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, util.NewRequestError(rawURL, err)
		}

		if resp.OK() || slices.Contains(opts.Expected, resp.StatusCode) {
			return resp, nil
		}
		if opts.DisallowRedirects && resp.StatusCode >= 300 && resp.StatusCode < 400 {
			return resp, nil
		}
		if retryableStatus(resp.StatusCode) && attempt < s.Retries {
			s.log.Warnf("%s: %s (%d/%d)", resp.Status, rawURL, attempt+1, s.Retries)
			if err := s.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}
		return nil, util.NewHTTPError(resp.StatusCode, resp.Status, rawURL)
	}
}

func (s *Session) do(
	ctx context.Context,
	client models.HTTPClient,
	rawURL string,
	opts *models.RequestOptions,
) (*models.Response, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	req, err := s.newRequest(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &models.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		URL:        finalURL,
		Body:       body,
	}, nil
}

func (s *Session) newRequest(
	ctx context.Context,
	rawURL string,
	opts *models.RequestOptions,
) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, util.NewInputError("invalid url %q: %v", rawURL, err)
	}
	if len(opts.Params) > 0 {
		query := u.Query()
		for key, values := range opts.Params {
			query[key] = values
		}
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case opts.JSON != nil:
		data, err := sonic.ConfigFastest.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case opts.Data != nil:
		body = strings.NewReader(opts.Data.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for key, value := range s.Headers {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	for _, cookie := range opts.Cookies {
		req.AddCookie(cookie)
	}
	return req, nil
}

func (s *Session) clientFor(opts *models.RequestOptions) models.HTTPClient {
	client, ok := s.Client.(*http.Client)
	if !ok || !opts.DisallowRedirects {
		return s.Client
	}
	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &noRedirect
}

// wait sleeps before the next attempt, longer after every failure.
func (s *Session) wait(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt+1) * s.RetryDelay
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
