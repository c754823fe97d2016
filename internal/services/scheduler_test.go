package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingCleaner struct {
	calls   atomic.Int32
	removed int64
	err     error
}

func (c *countingCleaner) CleanupExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return c.removed, c.err
}

func TestScheduler_RunsCleanup(t *testing.T) {
	cleaner := &countingCleaner{removed: 3}
	s, err := NewScheduler(cleaner, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_CleanupFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	cleaner := &countingCleaner{err: errors.New("db down")}
	s, err := NewScheduler(cleaner, time.Hour, zap.New(core))
	require.NoError(t, err)

	s.cleanupTokens()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "token cleanup failed", logs.All()[0].Message)
}
