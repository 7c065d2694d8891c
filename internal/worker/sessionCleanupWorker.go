package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/negative-web/internal/service"

	"github.com/sirupsen/logrus"
)

// SessionCleanupWorker tears down sessions that have been idle too long,
// releasing their downloads.
type SessionCleanupWorker struct {
	sessions service.SessionService
	interval time.Duration
}

func NewSessionCleanupWorker(sessions service.SessionService, interval time.Duration) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		sessions: sessions,
		interval: interval,
	}
}

func (w *SessionCleanupWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		logrus.Warn("Session cleanup worker disabled: non-positive interval")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Session cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Session cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *SessionCleanupWorker) cleanup(ctx context.Context) {
	removed := w.sessions.TeardownIdle(ctx)
	if removed > 0 {
		logrus.Infof("Idle session cleanup completed: %d sessions torn down", removed)
	}
}
