package models

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

type RequestOptions struct {
	Method  string
	Headers map[string]string
	Params  url.Values
	Data    url.Values
	JSON    any
	Cookies []*http.Cookie

	// DisallowRedirects returns 3xx responses as they are.
	DisallowRedirects bool
	// Expected lists non-2xx statuses that are returned
	// to the caller instead of raising an http error.
	Expected []int
}

type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	URL        string
	Body       []byte
}

// Requester is the blocking http capability handed to extractors.
type Requester interface {
	Request(ctx context.Context, url string, opts *RequestOptions) (*Response, error)
}

func (resp *Response) Text() string {
	return string(resp.Body)
}

func (resp *Response) JSON(v any) error {
	return sonic.ConfigFastest.Unmarshal(resp.Body, v)
}

// Get looks up a gjson path in a json body.
func (resp *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(resp.Body, path)
}

func (resp *Response) OK() bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
