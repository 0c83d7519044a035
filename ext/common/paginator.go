package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"iter"
	"strconv"

	"github.com/bytedance/sonic"
)

// PageFunc fetches the page addressed by token and returns its items
// and the token of the following page, "" when there is none.
type PageFunc[T any] func(token string) ([]T, string, error)

// Paginator walks a listing page by page. It stops when
//   - the next token is empty
//   - a page holds fewer than PageSize items, if PageSize is set
//   - the next token was already visited
//   - two consecutive pages bring no new items
//   - MaxPages pages were fetched, if MaxPages is set
type Paginator[T any] struct {
	Fetch    PageFunc[T]
	Start    string
	PageSize int
	MaxPages int

	// Key identifies an item. Items whose key was already seen are
	// dropped. Without a Key whole pages are compared by content.
	Key func(T) string
}

// staleLimit is the number of consecutive pages without new items
// after which a listing is considered exhausted.
const staleLimit = 2

func (p *Paginator[T]) Items() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		visited := map[string]struct{}{p.Start: {}}
		seen := make(map[string]struct{})
		stale := 0
		token := p.Start

		for page := 1; ; page++ {
			items, next, err := p.Fetch(token)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}

			fresh := p.filter(items, seen)
			for _, item := range fresh {
				if !yield(item, nil) {
					return
				}
			}

			if len(fresh) == 0 {
				stale++
				if stale >= staleLimit {
					return
				}
			} else {
				stale = 0
			}
			switch {
			case next == "":
				return
			case p.PageSize > 0 && len(items) < p.PageSize:
				return
			case p.MaxPages > 0 && page >= p.MaxPages:
				return
			}
			if _, ok := visited[next]; ok {
				return
			}
			visited[next] = struct{}{}
			token = next
		}
	}
}

// filter drops the items of a page that were returned before.
func (p *Paginator[T]) filter(items []T, seen map[string]struct{}) []T {
	if p.Key == nil {
		fingerprint := pageFingerprint(items)
		if _, ok := seen[fingerprint]; ok {
			return nil
		}
		seen[fingerprint] = struct{}{}
		return items
	}
	fresh := items[:0:0]
	for _, item := range items {
		key := p.Key(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, item)
	}
	return fresh
}

func pageFingerprint[T any](items []T) string {
	data, err := sonic.ConfigStd.Marshal(items)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", items))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Numbered pages through a listing addressed by page number, starting
// at first. fetch reports whether another page follows.
func Numbered[T any](first int, fetch func(page int) ([]T, bool, error)) *Paginator[T] {
	return &Paginator[T]{
		Start: strconv.Itoa(first),
		Fetch: func(token string) ([]T, string, error) {
			page, err := strconv.Atoi(token)
			if err != nil {
				return nil, "", fmt.Errorf("invalid page number %q", token)
			}
			items, more, err := fetch(page)
			if err != nil || !more {
				return items, "", err
			}
			return items, strconv.Itoa(page + 1), nil
		},
	}
}
