package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/facility-booking/internal/monitor"
	"github.com/ds124wfegd/facility-booking/internal/obs"
)

// Sweeper — хранилище с ручной уборкой истекших записей.
// Его реализует кэш ответов в памяти; Redis чистит записи сам по TTL.
type Sweeper interface {
	Sweep() int
}

// SweepWorker периодически удаляет истекшие подписки и записи кэша,
// удерживая рост памяти ограниченным
type SweepWorker struct {
	registry   *monitor.Registry
	replyCache Sweeper
	metrics    *obs.Metrics
	interval   time.Duration
}

func NewSweepWorker(registry *monitor.Registry, replyCache Sweeper, metrics *obs.Metrics, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		registry:   registry,
		replyCache: replyCache,
		metrics:    metrics,
		interval:   interval,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Sweep worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Sweep worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SweepWorker) sweep() {
	now := time.Now()

	expired := w.registry.Prune(now)
	if expired > 0 {
		logrus.Infof("Pruned %d expired subscriptions", expired)
	}
	if w.metrics != nil {
		w.metrics.SubscriptionsLive.Set(float64(w.registry.CountLive(now)))
	}

	if w.replyCache != nil {
		if removed := w.replyCache.Sweep(); removed > 0 {
			logrus.Debugf("Swept %d expired reply cache entries", removed)
		}
	}
}
