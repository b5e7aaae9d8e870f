package utils

import (
	"context"
	"coursemaster/logger"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpirer struct {
	calls int
	ttl   time.Duration
	err   error
}

func (s *stubExpirer) ExpireStaleOrders(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.calls++
	s.ttl = olderThan
	return 3, s.err
}

func TestExpireStaleOrdersPassesTTL(t *testing.T) {
	stub := &stubExpirer{}
	ExpireStaleOrders(stub, 2*time.Hour, logger.Nop())
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 2*time.Hour, stub.ttl)
}

func TestExpireStaleOrdersSwallowsErrors(t *testing.T) {
	stub := &stubExpirer{err: errors.New("db down")}
	assert.NotPanics(t, func() { ExpireStaleOrders(stub, time.Hour, logger.Nop()) })
}

func TestInitializeOrderSchedulerRejectsBadSpec(t *testing.T) {
	_, err := InitializeOrderScheduler("not a cron", time.Hour, &stubExpirer{}, logger.Nop())
	require.Error(t, err)
}

func TestInitializeOrderScheduler(t *testing.T) {
	c, err := InitializeOrderScheduler("*/15 * * * *", time.Hour, &stubExpirer{}, logger.Nop())
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}
