package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// IdleTableRemover is implemented by the table manager
type IdleTableRemover interface {
	CleanupIdle(maxIdle time.Duration) int
}

type Worker struct {
	Tables   IdleTableRemover
	Interval time.Duration
	MaxIdle  time.Duration
}

func NewWorker(tables IdleTableRemover, interval, maxIdle time.Duration) *Worker {
	return &Worker{Tables: tables, Interval: interval, MaxIdle: maxIdle}
}

// Start runs one cleanup immediately and then every Interval until ctx is
// cancelled. It blocks, run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	log.Info().Str("component", "cleanup").Dur("interval", w.Interval).Msg("Background worker started")
	w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("component", "cleanup").Msg("Background worker stopped")
			return
		case <-ticker.C:
			w.runCleanup()
		}
	}
}

// removals are logged by the table manager
func (w *Worker) runCleanup() {
	w.Tables.CleanupIdle(w.MaxIdle)
}
