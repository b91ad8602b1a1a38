package cmd

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/metrics"
)

// runMetrics writes the metrics of a run once: when screen returns or right
// before a fatal exit, which skips deferred calls.
type runMetrics struct {
	run    *metrics.Run
	path   string
	logger *zap.Logger
	once   sync.Once
}

func newRunMetrics(run *metrics.Run, path string, logger *zap.Logger) *runMetrics {
	return &runMetrics{run: run, path: path, logger: logger}
}

func (m *runMetrics) write() {
	if m.path == "" {
		return
	}
	m.once.Do(func() {
		if err := m.run.WriteToTextfile(m.path); err != nil {
			m.logger.Error("writing metrics", zap.Error(err))
		}
	})
}

func (m *runMetrics) fatal(msg string, fields ...zap.Field) {
	m.write()
	m.logger.Fatal(msg, fields...)
}
