package worker

import (
	"time"

	"github.com/accounts-service/pkg/logger"
)

// Purger reaps expired sessions and reports how many were removed
type Purger interface {
	Purge(now time.Time) int
}

// SessionWorker periodically drops expired sessions from a Purger-backed
// store. Redis expires its keys on its own; this worker serves the in-memory
// store.
type SessionWorker struct {
	store    Purger
	log      *logger.Logger
	interval time.Duration
	stopChan chan struct{}
}

// NewSessionWorker creates a new session reaper
func NewSessionWorker(store Purger, log *logger.Logger, interval time.Duration) *SessionWorker {
	if interval <= 0 {
		interval = 1 * time.Minute // Default reap interval
	}
	return &SessionWorker{
		store:    store,
		log:      log,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the reaping loop
func (w *SessionWorker) Start() {
	w.log.Info("session worker started with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := w.store.Purge(time.Now()); removed > 0 {
				w.log.Info("session worker: purged %d expired sessions", removed)
			}
		case <-w.stopChan:
			w.log.Info("session worker stopped")
			return
		}
	}
}

// Stop stops the reaping loop
func (w *SessionWorker) Stop() {
	close(w.stopChan)
}
