package models

import (
	"sync"

	"gdl/util/cache"
)

// SharedState is created once per pipeline run and handed to every
// extractor instance. It holds the only state extractors may share.
type SharedState struct {
	Cache  *cache.Cache
	warned sync.Map
}

func NewSharedState() *SharedState {
	return &SharedState{
		Cache: cache.New(),
	}
}

// WarnOnce calls fn the first time key is seen during this run.
func (s *SharedState) WarnOnce(key string, fn func()) {
	if s == nil {
		fn()
		return
	}
	if _, loaded := s.warned.LoadOrStore(key, struct{}{}); !loaded {
		fn()
	}
}
