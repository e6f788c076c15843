package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config selects which background workers run
type Config struct {
	ScrapeSchedule       string        // empty disables scheduled ingestion
	StaleProcessingAfter time.Duration // zero disables the stale monitor
	StaleCheckInterval   time.Duration
}

// WorkerService manages background workers for the application
type WorkerService struct {
	scrapeWorker *ScrapeWorker
	staleMonitor *StaleMonitor
	logger       *zap.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	running      bool
	startedAt    time.Time
	mu           sync.RWMutex
}

// Status is the JSON shape reported by the worker status endpoint
type Status struct {
	Running      bool         `json:"running"`
	Uptime       string       `json:"uptime,omitempty"`
	ScrapeWorker *ScrapeStats `json:"scrape_worker,omitempty"`
	StaleMonitor *StaleStats  `json:"stale_monitor,omitempty"`
}

// NewWorkerService creates a new worker service. ingester or store may be nil
// to leave the matching worker out.
func NewWorkerService(config Config, ingester Ingester, store StaleLister, logger *zap.Logger) *WorkerService {
	if logger == nil {
		logger = zap.NewNop()
	}

	ws := &WorkerService{logger: logger}
	if ingester != nil && config.ScrapeSchedule != "" {
		ws.scrapeWorker = NewScrapeWorker(ingester, config.ScrapeSchedule, logger)
	}
	if store != nil && config.StaleProcessingAfter > 0 {
		ws.staleMonitor = NewStaleMonitor(store, config.StaleProcessingAfter, config.StaleCheckInterval, logger)
	}
	return ws
}

// Start starts all configured background workers
func (ws *WorkerService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil
	}

	ws.ctx, ws.cancel = context.WithCancel(context.Background())

	if ws.scrapeWorker != nil {
		if err := ws.scrapeWorker.Start(ws.ctx); err != nil {
			ws.cancel()
			return err
		}
	}

	if ws.staleMonitor != nil {
		ws.wg.Add(1)
		go func() {
			defer ws.wg.Done()
			ws.staleMonitor.Run(ws.ctx)
		}()
	}

	ws.running = true
	ws.startedAt = time.Now()
	ws.logger.Info("background workers started",
		zap.Bool("scrape_worker", ws.scrapeWorker != nil),
		zap.Bool("stale_monitor", ws.staleMonitor != nil))
	return nil
}

// Stop stops all background workers and waits for them to finish
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.running {
		return
	}

	ws.cancel()
	if ws.scrapeWorker != nil {
		ws.scrapeWorker.Stop()
	}
	ws.wg.Wait()

	ws.running = false
	ws.logger.Info("background workers stopped")
}

// IsRunning returns whether the worker service is currently running
func (ws *WorkerService) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

// GetStatus returns the current status of the worker service
func (ws *WorkerService) GetStatus() Status {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	status := Status{Running: ws.running}
	if ws.running {
		status.Uptime = time.Since(ws.startedAt).Truncate(time.Second).String()
	}
	if ws.scrapeWorker != nil {
		stats := ws.scrapeWorker.GetStats()
		status.ScrapeWorker = &stats
	}
	if ws.staleMonitor != nil {
		stats := ws.staleMonitor.GetStats()
		status.StaleMonitor = &stats
	}
	return status
}
