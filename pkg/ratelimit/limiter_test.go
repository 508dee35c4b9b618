package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRespectsBurst(t *testing.T) {
	tb := NewTokenBucket(60, 2)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestWaitWithAvailableToken(t *testing.T) {
	tb := NewTokenBucket(60, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tb.Wait(ctx))
}

func TestWaitHonorsCancellation(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow()) // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.Error(t, err)
}

func TestZeroValuesClamped(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	assert.True(t, tb.Allow())
}
