package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/ocrsynth/internal/database"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/health"

	"github.com/sirupsen/logrus"
)

// flushTimeout bounds the final store made after the context is cancelled.
const flushTimeout = 5 * time.Second

// HealthSyncWorker shares resource health between processes: scores are
// loaded once at startup and stored periodically afterwards.
type HealthSyncWorker struct {
	repo     database.HealthRepository
	tracker  *health.Tracker
	interval time.Duration
}

func NewHealthSyncWorker(repo database.HealthRepository, tracker *health.Tracker, interval time.Duration) *HealthSyncWorker {
	return &HealthSyncWorker{
		repo:     repo,
		tracker:  tracker,
		interval: interval,
	}
}

// Restore merges the stored scores into the tracker. Only done at startup:
// merging keeps the lower score, so doing it on every tick would stop a
// recovering resource from ever climbing back.
func (w *HealthSyncWorker) Restore(ctx context.Context) error {
	scores, err := w.repo.Load(ctx)
	if err != nil {
		return err
	}
	w.tracker.Merge(scores)
	logrus.WithField("resources", len(scores)).Info("Resource health restored")
	return nil
}

func (w *HealthSyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Health sync worker started")

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			w.store(flushCtx)
			cancel()
			logrus.Info("Health sync worker stopped")
			return
		case <-ticker.C:
			w.store(ctx)
		}
	}
}

func (w *HealthSyncWorker) store(ctx context.Context) {
	snapshot := w.tracker.Snapshot()
	if err := w.repo.Store(ctx, snapshot); err != nil {
		logrus.Errorf("Failed to store resource health: %v", err)
		return
	}
	logrus.Debugf("Stored health for %d resources", len(snapshot))
}
