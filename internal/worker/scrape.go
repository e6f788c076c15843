package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blog-enhancer/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Ingester runs one ingestion pass
type Ingester interface {
	ScrapeLatest(ctx context.Context) (*services.IngestResult, error)
}

// ScrapeWorker triggers ingestion on a cron schedule. A run that is still in
// progress when the next tick fires causes that tick to be skipped.
type ScrapeWorker struct {
	ingester Ingester
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID
	logger   *zap.Logger

	mu        sync.RWMutex
	running   bool
	lastRun   time.Time
	lastCount int
	lastError string
	runs      int
}

// ScrapeStats describes the scheduled ingestion
type ScrapeStats struct {
	Schedule  string     `json:"schedule"`
	Running   bool       `json:"running"`
	Runs      int        `json:"runs"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastCount int        `json:"last_count"`
	LastError string     `json:"last_error,omitempty"`
}

// NewScrapeWorker creates a new scrape worker
func NewScrapeWorker(ingester Ingester, schedule string, logger *zap.Logger) *ScrapeWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeWorker{
		ingester: ingester,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With(zap.String("worker", "scrape")),
	}
}

// Start registers the schedule and starts the cron runner
func (w *ScrapeWorker) Start(ctx context.Context) error {
	id, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("invalid scrape schedule %q: %w", w.schedule, err)
	}

	w.entryID = id
	w.cron.Start()
	w.logger.Info("scheduled ingestion started", zap.String("schedule", w.schedule))
	return nil
}

// Stop stops the cron runner and waits for a run in progress
func (w *ScrapeWorker) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("scheduled ingestion stopped")
}

// RunOnce performs one ingestion and records its outcome
func (w *ScrapeWorker) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	w.logger.Info("scheduled ingestion triggered")
	result, err := w.ingester.ScrapeLatest(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	w.lastRun = time.Now()
	w.runs++
	if err != nil {
		w.lastError = err.Error()
		w.lastCount = 0
		w.logger.Error("scheduled ingestion failed", zap.Error(err))
		return
	}
	w.lastError = ""
	w.lastCount = len(result.Articles)
	w.logger.Info("scheduled ingestion finished", zap.String("message", result.Message))
}

// GetStats returns the worker's run history
func (w *ScrapeWorker) GetStats() ScrapeStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := ScrapeStats{
		Schedule:  w.schedule,
		Running:   w.running,
		Runs:      w.runs,
		LastCount: w.lastCount,
		LastError: w.lastError,
	}
	if !w.lastRun.IsZero() {
		last := w.lastRun
		stats.LastRun = &last
	}
	if w.entryID != 0 {
		if next := w.cron.Entry(w.entryID).Next; !next.IsZero() {
			stats.NextRun = &next
		}
	}
	return stats
}
