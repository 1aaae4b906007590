// pkg/logging/manager.go
package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Manager owns the active Options and the sinks shared by every Logger it
// creates. Options live in a single atomic cell: Configure swaps it and
// Loggers load it on every call, so reconfiguration reaches Loggers created
// earlier.
type Manager struct {
	options atomic.Pointer[Options]
	console *ConsoleSink
	file    *FileSink
	now     func() time.Time
	metrics *Metrics

	closeOnce sync.Once
}

type managerSettings struct {
	stdout    io.Writer
	stderr    io.Writer
	now       func() time.Time
	diag      *zap.Logger
	metrics   *Metrics
	queueSize int
}

// ManagerOption customizes NewManager.
type ManagerOption func(*managerSettings)

// WithStdout replaces os.Stdout as the console sink's standard stream.
func WithStdout(w io.Writer) ManagerOption {
	return func(s *managerSettings) { s.stdout = w }
}

// WithStderr replaces os.Stderr as the console sink's error stream.
func WithStderr(w io.Writer) ManagerOption {
	return func(s *managerSettings) { s.stderr = w }
}

// WithClock replaces time.Now as the source of event instants.
func WithClock(now func() time.Time) ManagerOption {
	return func(s *managerSettings) { s.now = now }
}

// WithDiagnostics sets the logger that receives rate-limited reports about
// discarded file writes. It is never fed back into the pipeline.
func WithDiagnostics(l *zap.Logger) ManagerOption {
	return func(s *managerSettings) { s.diag = l }
}

// WithMetrics sets the counters the pipeline updates.
func WithMetrics(m *Metrics) ManagerOption {
	return func(s *managerSettings) { s.metrics = m }
}

// WithQueueSize sets how many lines the file writer buffers.
func WithQueueSize(n int) ManagerOption {
	return func(s *managerSettings) { s.queueSize = n }
}

// NewManager creates a manager with DefaultOptions active.
func NewManager(opts ...ManagerOption) *Manager {
	settings := managerSettings{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		now:       time.Now,
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.metrics == nil {
		settings.metrics = NewMetrics(nil)
	}

	m := &Manager{
		console: NewConsoleSink(settings.stdout, settings.stderr, settings.metrics),
		file:    NewFileSink(settings.queueSize, settings.metrics, settings.diag),
		now:     settings.now,
		metrics: settings.metrics,
	}
	defaults := DefaultOptions()
	m.options.Store(&defaults)
	return m
}

// Configure replaces the active options. Nothing is merged with the previous
// value; a nil Hook becomes the identity and an empty base path becomes "./".
func (m *Manager) Configure(o Options) {
	o = o.withDefaults()
	m.options.Store(&o)
}

// Options returns the options currently active.
func (m *Manager) Options() Options {
	return *m.options.Load()
}

// CreateLogger returns a Logger bound to data and to this manager's live
// options.
func (m *Manager) CreateLogger(data any) *Logger {
	return &Logger{data: data, manager: m}
}

// Flush waits until every file write queued so far has been applied.
func (m *Manager) Flush(ctx context.Context) error {
	return m.file.Flush(ctx)
}

// Close drains the file writer and syncs the console streams. Logging after
// Close still reaches the console; file writes are dropped.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		err = m.file.Close()
		m.console.Sync()
	})
	return err
}

// dispatch runs one log call through the pipeline: enrich, hook, serialize,
// then the console and file sinks, in that order.
func (m *Manager) dispatch(data, payload any, sev Severity, cause any) error {
	now := m.now()
	opts := m.options.Load()

	rec, err := Enrich(payload, sev, cause, now)
	if err != nil {
		m.metrics.SerializeErrorsTotal.Inc()
		return err
	}

	rec = opts.Hook(rec, data)

	line, err := Serialize(rec)
	if err != nil {
		m.metrics.SerializeErrorsTotal.Inc()
		return err
	}
	m.metrics.RecordsTotal.WithLabelValues(sev.String()).Inc()

	m.console.Write(opts.Console, line, sev)
	m.file.Write(opts.File, line, now)
	return nil
}

var defaultManager = sync.OnceValue(func() *Manager {
	return NewManager()
})

// Default returns the process-wide manager used by the package-level
// Configure and CreateLogger.
func Default() *Manager {
	return defaultManager()
}

// Configure replaces the options of the process-wide manager.
func Configure(o Options) {
	Default().Configure(o)
}

// CreateLogger creates a Logger on the process-wide manager.
func CreateLogger(data any) *Logger {
	return Default().CreateLogger(data)
}
