// pkg/logging/file.go
package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrClosed is returned by operations on a closed sink or manager.
var ErrClosed = errors.New("logging: closed")

// DefaultQueueSize is the number of lines the file writer buffers before it
// starts dropping.
const DefaultQueueSize = 1024

// lineTerminator ends every line appended to a log file.
const lineTerminator = "\r\n"

// FileOptions gates the file sink and picks the directory log files live in.
type FileOptions struct {
	Enabled  bool   `koanf:"enabled"`
	BasePath string `koanf:"base_path"`
}

// FileName returns the hourly bucket name for t in local time, without zero
// padding: 2024-03-05 10:15 becomes "2024_3_5_10.log".
func FileName(t time.Time) string {
	lt := t.Local()
	return fmt.Sprintf("%d_%d_%d_%d.log", lt.Year(), int(lt.Month()), lt.Day(), lt.Hour())
}

// FilePath joins basePath with the bucket name for t.
func FilePath(basePath string, t time.Time) string {
	return filepath.Join(basePath, FileName(t))
}

type fileWrite struct {
	path string
	data []byte
	done chan struct{} // set on flush barriers only
}

// FileSink appends lines to hour-bucketed files from a single background
// goroutine. Writes never block the caller and never report failure: a full
// queue drops the line and a failed append is discarded. Both are counted.
type FileSink struct {
	queue   chan fileWrite
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	metrics *Metrics
	diag    *zap.Logger
	report  *rate.Sometimes
}

// NewFileSink starts the writer goroutine. diag may be nil; when set it
// receives at most one failure report per minute.
func NewFileSink(queueSize int, metrics *Metrics, diag *zap.Logger) *FileSink {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if diag == nil {
		diag = zap.NewNop()
	}
	s := &FileSink{
		queue:   make(chan fileWrite, queueSize),
		metrics: metrics,
		diag:    diag,
		report:  &rate.Sometimes{First: 1, Interval: time.Minute},
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Write queues line for the file of the hour containing now. It does nothing
// when opts has the file sink disabled.
func (s *FileSink) Write(opts FileOptions, line string, now time.Time) {
	if !opts.Enabled {
		return
	}

	w := fileWrite{
		path: FilePath(opts.BasePath, now),
		data: []byte(line + lineTerminator),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.metrics.FileDroppedTotal.Inc()
		return
	}
	select {
	case s.queue <- w:
	default:
		s.metrics.FileDroppedTotal.Inc()
	}
}

// Flush blocks until every line queued before the call has been applied.
func (s *FileSink) Flush(ctx context.Context) error {
	done := make(chan struct{})

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	select {
	case s.queue <- fileWrite{done: done}:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the writer. It is safe to call twice.
func (s *FileSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *FileSink) run() {
	defer s.wg.Done()
	for w := range s.queue {
		if w.done != nil {
			close(w.done)
			continue
		}
		if err := appendFile(w.path, w.data); err != nil {
			s.metrics.FileWriteErrorsTotal.Inc()
			s.report.Do(func() {
				s.diag.Warn("log file append failed, line discarded",
					zap.String("path", w.path),
					zap.Error(err))
			})
			continue
		}
		s.metrics.FileWritesTotal.Inc()
	}
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}
