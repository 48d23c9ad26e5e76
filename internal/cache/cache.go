// Package cache provides an in-memory LRU cache with sliding expiry and a
// manager that sweeps expired entries in the background.
package cache

import (
	"context"
	"time"

	"ledgerview/internal/log"
)

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache.
type Manager struct {
	caches   []Cleaner
	interval time.Duration
	logger   *log.Logger
}

// NewManager creates a manager sweeping every interval.
func NewManager(interval time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Manager{
		interval: interval,
		logger:   logger.WithComponent(log.ComponentCache),
	}
}

// Register adds a cache to the sweep. Call before Run.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// Sweep cleans all registered caches once and returns the total removed.
func (m *Manager) Sweep() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps until ctx is done. It always returns nil so it can sit in an
// errgroup next to the HTTP server.
func (m *Manager) Run(ctx context.Context) error {
	if m.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("expired entries removed", log.FieldCount, n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
