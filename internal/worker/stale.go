package worker

import (
	"context"
	"sync"
	"time"

	"blog-enhancer/internal/models"

	"go.uber.org/zap"
)

// StaleLister finds articles stuck in a status
type StaleLister interface {
	ListStale(ctx context.Context, status models.Status, cutoff time.Time) ([]models.Article, error)
}

// StaleMonitor periodically reports articles that have been processing for
// longer than a threshold. It only reports; it never changes their status.
type StaleMonitor struct {
	store     StaleLister
	threshold time.Duration
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.RWMutex
	lastCheck time.Time
	stale     []string
	lastError string
}

// StaleStats describes the most recent check
type StaleStats struct {
	Threshold  string     `json:"threshold"`
	LastCheck  *time.Time `json:"last_check,omitempty"`
	StaleCount int        `json:"stale_count"`
	StaleIDs   []string   `json:"stale_ids"`
	LastError  string     `json:"last_error,omitempty"`
}

// NewStaleMonitor creates a monitor that checks every interval. A zero
// interval checks at a quarter of the threshold.
func NewStaleMonitor(store StaleLister, threshold, interval time.Duration, logger *zap.Logger) *StaleMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = threshold / 4
	}
	if interval < time.Second {
		interval = time.Second
	}
	return &StaleMonitor{
		store:     store,
		threshold: threshold,
		interval:  interval,
		logger:    logger.With(zap.String("worker", "stale_monitor")),
		now:       time.Now,
		stale:     []string{},
	}
}

// Run checks immediately and then on every tick until ctx is cancelled
func (m *StaleMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("stale processing monitor started",
		zap.Duration("threshold", m.threshold),
		zap.Duration("interval", m.interval))

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stale processing monitor stopped")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one scan and records the result
func (m *StaleMonitor) Check(ctx context.Context) {
	now := m.now()
	articles, err := m.store.ListStale(ctx, models.StatusProcessing, now.Add(-m.threshold))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCheck = now

	if err != nil {
		if ctx.Err() == nil {
			m.logger.Error("stale processing check failed", zap.Error(err))
		}
		m.lastError = err.Error()
		return
	}

	m.lastError = ""
	m.stale = make([]string, 0, len(articles))
	for _, a := range articles {
		m.stale = append(m.stale, a.ID.String())
		m.logger.Warn("article stuck in processing",
			zap.String("article_id", a.ID.String()),
			zap.Time("since", a.UpdatedAt))
	}
}

// GetStats returns the outcome of the most recent check
func (m *StaleMonitor) GetStats() StaleStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := StaleStats{
		Threshold:  m.threshold.String(),
		StaleCount: len(m.stale),
		StaleIDs:   append([]string(nil), m.stale...),
		LastError:  m.lastError,
	}
	if stats.StaleIDs == nil {
		stats.StaleIDs = []string{}
	}
	if !m.lastCheck.IsZero() {
		last := m.lastCheck
		stats.LastCheck = &last
	}
	return stats
}
