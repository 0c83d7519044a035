package job

import (
	"context"
	"iter"

	"gdl/models"
)

type prefetched struct {
	msg *models.Message
	err error
}

// Prefetch runs seq in its own goroutine, at most size messages ahead
// of the consumer. Messages are cloned before they cross over. Breaking
// out of the returned sequence stops the producer and waits for it.
func Prefetch(ctx context.Context, seq iter.Seq2[*models.Message, error], size int) iter.Seq2[*models.Message, error] {
	if size < 1 {
		size = defaultPrefetchSize
	}
	return func(yield func(*models.Message, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		ch := make(chan prefetched, size)
		done := make(chan struct{})
		defer func() {
			cancel()
			<-done
		}()

		go func() {
			defer close(done)
			defer close(ch)
			for msg, err := range seq {
				item := prefetched{err: err}
				if msg != nil {
					item.msg = msg.Clone()
				}
				select {
				case ch <- item:
				case <-ctx.Done():
					return
				}
				if err != nil {
					return
				}
			}
		}()

		for {
			select {
			case item, ok := <-ch:
				if !ok {
					return
				}
				if !yield(item.msg, item.err) {
					return
				}
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			}
		}
	}
}
