// pkg/logging/testing.go
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TestManager is a Manager whose console streams are captured in memory.
type TestManager struct {
	*Manager
	stdout *syncBuffer
	stderr *syncBuffer
}

// NewTestManager creates a manager with captured console streams. It is
// closed when the test ends. Extra options (WithClock, WithMetrics, ...) are
// applied after the capture streams.
func NewTestManager(tb testing.TB, opts ...ManagerOption) *TestManager {
	tb.Helper()
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	all := append([]ManagerOption{WithStdout(stdout), WithStderr(stderr)}, opts...)
	m := &TestManager{
		Manager: NewManager(all...),
		stdout:  stdout,
		stderr:  stderr,
	}
	tb.Cleanup(func() { _ = m.Close() })
	return m
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Stdout returns everything written to the captured standard stream.
func (m *TestManager) Stdout() string {
	return m.stdout.String()
}

// Stderr returns everything written to the captured error stream.
func (m *TestManager) Stderr() string {
	return m.stderr.String()
}

// StdoutRecords decodes each captured stdout line.
func (m *TestManager) StdoutRecords(tb testing.TB) []Record {
	tb.Helper()
	return decodeLines(tb, m.Stdout())
}

// StderrRecords decodes each captured stderr line.
func (m *TestManager) StderrRecords(tb testing.TB) []Record {
	tb.Helper()
	return decodeLines(tb, m.Stderr())
}

// MustFlush flushes the file writer or fails the test.
func (m *TestManager) MustFlush(tb testing.TB) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Flush(ctx); err != nil {
		tb.Fatalf("flush: %v", err)
	}
}

// AssertLogged verifies a record with the severity and message was written
// to the console.
func (m *TestManager) AssertLogged(tb testing.TB, sev Severity, message string) {
	tb.Helper()
	records := append(m.StdoutRecords(tb), m.StderrRecords(tb)...)
	for _, rec := range records {
		if rec[SeverityKey] == sev.String() && rec[MessageKey] == message {
			return
		}
	}
	tb.Errorf("expected %v record with message %q, got: %+v", sev, message, records)
}

func decodeLines(tb testing.TB, out string) []Record {
	tb.Helper()
	var records []Record
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			tb.Fatalf("invalid JSON line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}
