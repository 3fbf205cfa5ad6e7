package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateLimitRepo struct {
	counts map[string]int64
	err    error
}

func (f *fakeRateLimitRepo) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestRateLimitAllow_UnderLimit(t *testing.T) {
	svc := NewRateLimitService(&fakeRateLimitRepo{}, testLogger())

	for i := 0; i < 3; i++ {
		allowed, remaining, err := svc.Allow(context.Background(), "auth:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
	}
}

func TestRateLimitAllow_OverLimit(t *testing.T) {
	svc := NewRateLimitService(&fakeRateLimitRepo{}, testLogger())

	for i := 0; i < 3; i++ {
		_, _, err := svc.Allow(context.Background(), "send:user", 3, time.Minute)
		require.NoError(t, err)
	}

	allowed, remaining, err := svc.Allow(context.Background(), "send:user", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimitAllow_SeparateKeys(t *testing.T) {
	svc := NewRateLimitService(&fakeRateLimitRepo{}, testLogger())

	_, _, err := svc.Allow(context.Background(), "auth:a", 1, time.Minute)
	require.NoError(t, err)

	allowed, _, err := svc.Allow(context.Background(), "auth:b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitAllow_RepoError(t *testing.T) {
	svc := NewRateLimitService(&fakeRateLimitRepo{err: errors.New("redis down")}, testLogger())

	allowed, _, err := svc.Allow(context.Background(), "auth:x", 5, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}
