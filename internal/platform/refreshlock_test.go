package platform

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleflightLockDeduplicatesConcurrentCalls(t *testing.T) {
	lock := NewSingleflightLock()
	var calls int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lock.Do(context.Background(), "same-key", func() error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, int(atomic.LoadInt32(&calls)), 20)
	assert.GreaterOrEqual(t, int(atomic.LoadInt32(&calls)), 1)
}

func TestSingleflightLockPropagatesError(t *testing.T) {
	lock := NewSingleflightLock()
	sentinel := errors.New("refresh failed")

	err := lock.Do(context.Background(), "key", func() error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
}

func TestSingleflightLockRunsSeparateKeysIndependently(t *testing.T) {
	lock := NewSingleflightLock()
	var calls int32

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		key := "key-a"
		if i == 1 {
			key = "key-b"
		}
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_ = lock.Do(context.Background(), k, func() error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}(key)
	}
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
