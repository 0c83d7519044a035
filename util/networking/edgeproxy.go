package networking

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gdl/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// relayEnvelope is what the edge relay answers with: the response it
// got for the target url, flattened to json.
type relayEnvelope struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"status_code"`
	Text       string            `json:"text"`
	Headers    map[string]string `json:"headers"`
	Cookies    []string          `json:"cookies"`
}

// EdgeProxyClient tunnels requests through a relay that fetches
// "?url=<target>" on the client's behalf. Method, headers and body
// are forwarded unchanged.
type EdgeProxyClient struct {
	client   *http.Client
	relayURL string
}

var _ models.HTTPClient = (*EdgeProxyClient)(nil)

func NewEdgeProxyClientFromConfig(cfg *models.ExtractorConfig) *EdgeProxyClient {
	return NewEdgeProxyClient(cfg.EdgeProxyURL)
}

func NewEdgeProxyClient(relayURL string) *EdgeProxyClient {
	return &EdgeProxyClient{
		client: &http.Client{
			Transport: GetBaseTransport(),
			Timeout:   60 * time.Second,
		},
		relayURL: relayURL,
	}
}

func (c *EdgeProxyClient) Do(req *http.Request) (*http.Response, error) {
	if c.relayURL == "" {
		return nil, errors.New("edge proxy url is not set")
	}
	relayReq, err := c.relayRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(relayReq)
	if err != nil {
		return nil, errors.Wrap(err, "edge proxy request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edge proxy answered %s", resp.Status)
	}

	var envelope relayEnvelope
	if err := sonic.ConfigFastest.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrap(err, "malformed edge proxy response")
	}
	return envelope.unwrap(req)
}

func (c *EdgeProxyClient) relayRequest(req *http.Request) (*http.Request, error) {
	relay, err := url.Parse(c.relayURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid edge proxy url")
	}
	query := relay.Query()
	query.Set("url", req.URL.String())
	relay.RawQuery = query.Encode()

	var body io.Reader
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
		body = bytes.NewReader(data)
	}
	relayReq, err := http.NewRequestWithContext(req.Context(), req.Method, relay.String(), body)
	if err != nil {
		return nil, err
	}
	relayReq.Header = req.Header.Clone()
	return relayReq, nil
}

// unwrap turns the envelope into the response the target would have
// sent; its Request carries the final url after redirects.
func (e *relayEnvelope) unwrap(req *http.Request) (*http.Response, error) {
	final := req
	if e.URL != "" {
		finalURL, err := url.Parse(e.URL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid final url in edge proxy response")
		}
		final = req.Clone(req.Context())
		final.URL = finalURL
	}
	header := make(http.Header, len(e.Headers)+1)
	for name, value := range e.Headers {
		header.Set(name, value)
	}
	for _, cookie := range e.Cookies {
		header.Add("Set-Cookie", cookie)
	}
	return &http.Response{
		StatusCode:    e.StatusCode,
		Status:        strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode),
		Header:        header,
		Body:          io.NopCloser(bytes.NewBufferString(e.Text)),
		ContentLength: int64(len(e.Text)),
		Request:       final,
	}, nil
}
