// Package watch polls a recordings root and runs the pipeline for every
// meeting folder whose tracks are new or have changed.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/pipeline"
	"github.com/grovetools/meetinglogs/internal/track"
)

// Runner processes one meeting folder.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Monitor handles periodic scanning of a recordings root.
type Monitor struct {
	root          string
	runner        Runner
	checkInterval time.Duration
	// Settle is how long a folder must stay unchanged before it is processed.
	Settle time.Duration
	// OnResult, if set, is called after each run.
	OnResult func(dir string, res *pipeline.Result, err error)
	now      func() time.Time

	processed      map[string]time.Time // folder -> newest track mtime at last run
	processedMutex sync.RWMutex
	stopChan       chan struct{}
	wg             sync.WaitGroup
	logger         *logrus.Entry
}

// DefaultInterval is used when NewMonitor is given a non-positive interval.
const DefaultInterval = 30 * time.Second

// NewMonitor creates a monitor for root.
func NewMonitor(root string, runner Runner, checkInterval time.Duration) *Monitor {
	if checkInterval <= 0 {
		checkInterval = DefaultInterval
	}
	return &Monitor{
		root:          root,
		runner:        runner,
		checkInterval: checkInterval,
		Settle:        10 * time.Second,
		now:           time.Now,
		processed:     make(map[string]time.Time),
		stopChan:      make(chan struct{}),
		logger:        logging.NewLogger("watch").WithField("root", root),
	}
}

// Start begins the monitoring loop. It returns immediately.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("Starting recordings monitor")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		// Initial check immediately
		m.Scan(ctx)

		ticker := time.NewTicker(m.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Scan(ctx)
			case <-ctx.Done():
				m.logger.Info("Stopping recordings monitor")
				return
			case <-m.stopChan:
				m.logger.Info("Stopping recordings monitor")
				return
			}
		}
	}()
}

// Stop gracefully stops the monitor.
func (m *Monitor) Stop() {
	close(m.stopChan)
	m.wg.Wait()
}

// Scan checks every meeting folder once and returns how many were processed.
func (m *Monitor) Scan(ctx context.Context) int {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to read recordings root")
		return 0
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, filepath.Join(m.root, e.Name()))
		}
	}
	sort.Strings(dirs)

	runs := 0
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		if m.processFolder(ctx, dir) {
			runs++
		}
	}
	return runs
}

// processFolder runs the pipeline for dir when its tracks changed since the
// last run and have settled.
func (m *Monitor) processFolder(ctx context.Context, dir string) bool {
	newest, ok := newestTrack(dir)
	if !ok {
		return false
	}
	if m.now().Sub(newest) < m.Settle {
		m.logger.WithField("dir", dir).Debug("Folder still changing")
		return false
	}

	m.processedMutex.RLock()
	last, seen := m.processed[dir]
	m.processedMutex.RUnlock()
	if seen && !newest.After(last) {
		return false
	}

	res, err := m.runner.Run(ctx, pipeline.Options{InputDir: dir})
	// A failing folder is not retried until its tracks change again.
	m.processedMutex.Lock()
	m.processed[dir] = newest
	m.processedMutex.Unlock()

	entry := m.logger.WithField("dir", dir)
	if err != nil {
		entry.WithError(err).Warn("Failed to process meeting")
	} else {
		entry.WithField("run_id", res.RunID).Info("Processed meeting")
	}
	if m.OnResult != nil {
		m.OnResult(dir, res, err)
	}
	return true
}

// newestTrack returns the latest modification time of the track or audio
// files in dir.
func newestTrack(dir string) (time.Time, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, false
	}
	var newest time.Time
	found := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".json" && !track.AudioExtensions[ext] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !found || info.ModTime().After(newest) {
			newest = info.ModTime()
			found = true
		}
	}
	return newest, found
}
