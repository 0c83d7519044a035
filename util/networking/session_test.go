package networking

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"gdl/enums"
	"gdl/models"
	"gdl/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(retries int) *Session {
	session := NewSessionFromConfig(&models.ExtractorConfig{Retries: retries}, &http.Client{})
	session.RetryDelay = 0
	return session
}

func TestSessionRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, util.ChromeUA, r.Header.Get("User-Agent"))
		assert.Equal(t, "value", r.Header.Get("X-Custom"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "kept", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"abc"}],"meta":{"last_page":3}}`))
	}))
	defer server.Close()

	resp, err := newTestSession(0).Request(context.Background(), server.URL+"/search?q=kept", &models.RequestOptions{
		Headers: map[string]string{"X-Custom": "value"},
		Params:  url.Values{"page": {"2"}},
	})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "abc", resp.Get("data.0.id").String())
	assert.Equal(t, int64(3), resp.Get("meta.last_page").Int())

	var body struct {
		Meta struct {
			LastPage int `json:"last_page"`
		} `json:"meta"`
	}
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, 3, body.Meta.LastPage)
}

func TestSessionPostBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		w.Write(append([]byte(r.Header.Get("Content-Type")+"|"), data...))
	}))
	defer server.Close()

	session := newTestSession(0)
	resp, err := session.Request(context.Background(), server.URL, &models.RequestOptions{
		Data: url.Values{"user": {"me"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded|user=me", resp.Text())

	resp, err = session.Request(context.Background(), server.URL, &models.RequestOptions{
		JSON: map[string]any{"id": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, `application/json|{"id":1}`, resp.Text())
}

func TestSessionRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newTestSession(4).Request(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, int32(3), calls.Load())
}

func TestSessionHTTPError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	session := newTestSession(4)
	_, err := session.Request(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.True(t, util.IsKind(err, enums.ErrorKindHTTP))
	e, ok := util.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, e.StatusCode)
	// 4xx are not retried
	assert.Equal(t, int32(1), calls.Load())

	resp, err := session.Request(context.Background(), server.URL, &models.RequestOptions{
		Expected: []int{http.StatusNotFound},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionInvalidURL(t *testing.T) {
	session := newTestSession(4)
	// a retry would block on this delay until the deadline
	session.RetryDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := session.Request(ctx, "http://[::1", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, util.IsKind(err, enums.ErrorKindInput))
	assert.Equal(t, 32, util.ExitCode(err))
}

func TestSessionTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	_, err := newTestSession(1).Request(context.Background(), target, nil)
	require.Error(t, err)
	assert.True(t, util.IsKind(err, enums.ErrorKindExtraction))
	assert.Equal(t, 4, util.ExitCode(err))
	var urlErr *url.Error
	assert.ErrorAs(t, err, &urlErr)
}

func TestSessionRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/from" {
			http.Redirect(w, r, "/to", http.StatusFound)
			return
		}
		w.Write([]byte("landed"))
	}))
	defer server.Close()

	session := newTestSession(0)
	resp, err := session.Request(context.Background(), server.URL+"/from", nil)
	require.NoError(t, err)
	assert.Equal(t, "landed", resp.Text())
	assert.Equal(t, server.URL+"/to", resp.URL)

	resp, err = session.Request(context.Background(), server.URL+"/from", &models.RequestOptions{
		DisallowRedirects: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/to", resp.Header.Get("Location"))
}

func TestSessionCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestSession(3).Request(ctx, server.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEdgeProxyClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.org/page", r.URL.Query().Get("url"))
		w.Write([]byte(`{"url":"https://example.org/final","status_code":200,"text":"relayed","headers":{"X-Test":"1"},"cookies":["a=b"]}`))
	}))
	defer server.Close()

	session := NewSessionFromConfig(&models.ExtractorConfig{}, NewEdgeProxyClient(server.URL))
	resp, err := session.Request(context.Background(), "https://example.org/page", nil)
	require.NoError(t, err)
	assert.Equal(t, "relayed", resp.Text())
	assert.Equal(t, "https://example.org/final", resp.URL)
	assert.Equal(t, "1", resp.Header.Get("X-Test"))
	assert.Equal(t, "a=b", resp.Header.Get("Set-Cookie"))
}

func TestEdgeProxyRelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewEdgeProxyClient(server.URL).Do(httptest.NewRequest(http.MethodGet, "https://example.org/", nil))
	assert.Error(t, err)

	_, err = NewEdgeProxyClient("").Do(httptest.NewRequest(http.MethodGet, "https://example.org/", nil))
	assert.Error(t, err)
}

func TestProxyFunc(t *testing.T) {
	proxy := proxyFunc(&models.ExtractorConfig{
		HTTPProxy: "http://proxy:8080",
		NoProxy:   "localhost, .internal.net, 10.0.0.0/8",
	})
	resolve := func(rawURL string) string {
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		require.NoError(t, err)
		proxyURL, err := proxy(req)
		require.NoError(t, err)
		if proxyURL == nil {
			return ""
		}
		return proxyURL.String()
	}

	assert.Equal(t, "http://proxy:8080", resolve("http://example.org/"))
	assert.Equal(t, "http://proxy:8080", resolve("https://example.org/"))
	assert.Empty(t, resolve("https://api.internal.net/x"))
	assert.Empty(t, resolve("http://10.1.2.3/"))
	assert.Empty(t, resolve("http://localhost:8080/"))

	proxy = proxyFunc(&models.ExtractorConfig{
		HTTPProxy:  "http://plain:1",
		HTTPSProxy: "http://secure:2",
		NoProxy:    "*",
	})
	assert.Empty(t, resolve("https://example.org/"))
}
