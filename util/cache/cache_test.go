package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	c := New()
	c.Set("token", "abc", 50*time.Millisecond)
	c.Set("forever", 1, 0)

	value, ok := c.Get("token")
	require.True(t, ok)
	assert.Equal(t, "abc", value)

	time.Sleep(100 * time.Millisecond)
	_, ok = c.Get("token")
	assert.False(t, ok)

	_, ok = c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Delete("forever")
	assert.Equal(t, 0, c.Len())
}

func TestMemoize(t *testing.T) {
	c := New()
	calls := 0
	fn := func() (string, error) {
		calls++
		return "value", nil
	}

	for range 3 {
		value, err := Memoize(c, "key", time.Hour, fn)
		require.NoError(t, err)
		assert.Equal(t, "value", value)
	}
	assert.Equal(t, 1, calls)
}

func TestMemoizeConcurrent(t *testing.T) {
	c := New()
	var fetches atomic.Int32
	fn := func() (string, error) {
		fetches.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "token", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := Memoize(c, "login", time.Hour, fn)
			assert.NoError(t, err)
			results[i] = value
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load())
	for _, value := range results {
		assert.Equal(t, "token", value)
	}
}

func TestMemoizeDoesNotCacheErrors(t *testing.T) {
	c := New()
	_, err := Memoize(c, "key", time.Hour, func() (int, error) {
		return 0, errors.New("login failed")
	})
	require.Error(t, err)

	_, ok := c.Get("key")
	assert.False(t, ok)
}
