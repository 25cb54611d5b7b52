package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowConsumesBurst(t *testing.T) {
	l := New(3, 0.001)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestRefillRestoresTokens(t *testing.T) {
	l := New(1, 100) // 100 tokens/sec refills quickly

	require.True(t, l.Allow())
	require.False(t, l.Allow())

	time.Sleep(50 * time.Millisecond)
	assert.True(t, l.Allow())
}

func TestRefillCapsAtBurst(t *testing.T) {
	l := New(2, 1000)
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, l.Available(), 2.0)
}

func TestWaitAcquiresToken(t *testing.T) {
	l := New(1, 50)
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitRespectsCancellation(t *testing.T) {
	l := New(1, 0.0001)
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestReset(t *testing.T) {
	l := New(1, 0.001)
	require.True(t, l.Allow())
	require.False(t, l.Allow())

	l.Reset()
	assert.True(t, l.Allow())
}

func TestConcurrentAllow(t *testing.T) {
	l := New(50, 0.001)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
