package meetinglogs

import (
	"context"
	"time"

	"github.com/grovetools/meetinglogs/config"
	"github.com/grovetools/meetinglogs/internal/pipeline"
	"github.com/grovetools/meetinglogs/internal/watch"
)

// Monitor wraps the internal recordings monitor
type Monitor struct {
	*watch.Monitor
}

// NewMonitor creates a monitor that runs the full pipeline, configured by
// cfg, for each new meeting folder under root.
func NewMonitor(root string, cfg *config.Config, checkInterval time.Duration) *Monitor {
	return &Monitor{
		Monitor: watch.NewMonitor(root, pipeline.New(cfg), checkInterval),
	}
}

// Start begins monitoring root.
func (m *Monitor) Start(ctx context.Context) {
	m.Monitor.Start(ctx)
}

// Stop gracefully stops the monitor
func (m *Monitor) Stop() {
	m.Monitor.Stop()
}
