// Package exttest runs extractors against canned pages.
package exttest

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"gdl/models"
	"gdl/util"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Session answers requests from Pages, keyed by url with the
// encoded params appended.
type Session struct {
	Pages map[string]string

	mu       sync.Mutex
	Requests []string
}

func (s *Session) Request(_ context.Context, url string, opts *models.RequestOptions) (*models.Response, error) {
	key := url
	if opts != nil && len(opts.Params) > 0 {
		key += "?" + opts.Params.Encode()
	}
	s.mu.Lock()
	s.Requests = append(s.Requests, key)
	s.mu.Unlock()

	body, ok := s.Pages[key]
	if !ok {
		return nil, util.NewHTTPError(http.StatusNotFound, "404 Not Found", key)
	}
	return &models.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     make(http.Header),
		URL:        url,
		Body:       []byte(body),
	}, nil
}

// NewContext matches url against extractor and builds its context.
func NewContext(t *testing.T, extractor *models.Extractor, url string, session models.Requester) *models.ExtractorContext {
	t.Helper()
	groups := extractor.Match(url)
	require.NotNil(t, groups, "%s does not match %s", extractor.CodeName, url)
	return &models.ExtractorContext{
		Context:       context.Background(),
		MatchedURL:    url,
		MatchedGroups: groups,
		Extractor:     extractor,
		Session:       session,
		Shared:        models.NewSharedState(),
		Log:           zap.NewNop().Sugar(),
	}
}

// Collect runs the extractor for url and returns all its messages.
func Collect(t *testing.T, extractor *models.Extractor, url string, session models.Requester) []*models.Message {
	t.Helper()
	producer, err := extractor.New(NewContext(t, extractor, url, session))
	require.NoError(t, err)
	var messages []*models.Message
	for msg, err := range producer.Items() {
		require.NoError(t, err)
		messages = append(messages, msg)
	}
	return messages
}
