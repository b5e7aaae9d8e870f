package utils

import (
	"context"
	"coursemaster/logger"
	"time"

	"github.com/robfig/cron/v3"
)

// OrderExpirer fails pending orders that were never paid
type OrderExpirer interface {
	ExpireStaleOrders(ctx context.Context, olderThan time.Duration) (int64, error)
}

// InitializeOrderScheduler starts the stale pending-order sweep on spec.
// The caller stops the returned scheduler on shutdown.
func InitializeOrderScheduler(spec string, ttl time.Duration, expirer OrderExpirer, log *logger.Logger) (*cron.Cron, error) {
	log.Info("[ORDER-SCHEDULER] Initializing order expiry scheduler...", "spec", spec, "ttl", ttl.String())

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { ExpireStaleOrders(expirer, ttl, log) }); err != nil {
		return nil, err
	}

	c.Start()
	log.Info("[ORDER-SCHEDULER] Order expiry scheduler started")
	return c, nil
}

// ExpireStaleOrders runs one sweep
func ExpireStaleOrders(expirer OrderExpirer, ttl time.Duration, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expired, err := expirer.ExpireStaleOrders(ctx, ttl)
	if err != nil {
		log.Error("[ORDER-SCHEDULER] Error expiring pending orders", "error", err)
		return
	}
	if expired > 0 {
		log.Info("[ORDER-SCHEDULER] Expired stale pending orders", "count", expired)
	}
}
