// pkg/logging/console.go
package logging

import (
	"io"

	"go.uber.org/zap/zapcore"
)

// ConsoleOptions gates the console sink.
type ConsoleOptions struct {
	Enabled bool `koanf:"enabled"`
}

// ConsoleSink writes serialized lines to stdout, or to stderr for Error
// records. Each stream is locked so concurrent lines never interleave.
type ConsoleSink struct {
	stdout  zapcore.WriteSyncer
	stderr  zapcore.WriteSyncer
	metrics *Metrics
}

// NewConsoleSink wraps the two streams.
func NewConsoleSink(stdout, stderr io.Writer, metrics *Metrics) *ConsoleSink {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &ConsoleSink{
		stdout:  zapcore.Lock(zapcore.AddSync(stdout)),
		stderr:  zapcore.Lock(zapcore.AddSync(stderr)),
		metrics: metrics,
	}
}

// Write emits line on the stream selected by sev. It does nothing when opts
// has the console disabled. Stream write errors are ignored.
func (s *ConsoleSink) Write(opts ConsoleOptions, line string, sev Severity) {
	if !opts.Enabled {
		return
	}

	out, stream := s.stdout, "stdout"
	if sev == Error {
		out, stream = s.stderr, "stderr"
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	_, _ = out.Write(buf)
	s.metrics.ConsoleLinesTotal.WithLabelValues(stream).Inc()
}

// Sync flushes both streams. Errors from syncing a terminal are expected on
// some platforms and are not reported.
func (s *ConsoleSink) Sync() {
	_ = s.stdout.Sync()
	_ = s.stderr.Sync()
}
