// pkg/logging/logger.go
package logging

// Logger binds context data to a Manager. Every call reads the manager's
// options at call time. Logger is safe for concurrent use.
//
// Payloads may be a string, a Record, a map[string]any, or any value the
// JSON encoder accepts. The returned error is non-nil only when the payload
// (or what the hook made of it) cannot be serialized; sink failures are never
// reported.
type Logger struct {
	data    any
	manager *Manager
}

// Data returns the value bound at creation.
func (l *Logger) Data() any {
	return l.data
}

// Log writes payload at sev.
func (l *Logger) Log(payload any, sev Severity) error {
	return l.manager.dispatch(l.data, payload, sev, nil)
}

// Debug writes payload at Debug.
func (l *Logger) Debug(payload any) error {
	return l.Log(payload, Debug)
}

// Info writes payload at Info.
func (l *Logger) Info(payload any) error {
	return l.Log(payload, Info)
}

// Warn writes payload at Warn.
func (l *Logger) Warn(payload any) error {
	return l.Log(payload, Warn)
}

// Error writes payload at Error with cause attached under "error". cause may
// be nil, an error, a struct, a map or a plain value.
func (l *Logger) Error(payload any, cause any) error {
	return l.manager.dispatch(l.data, payload, Error, cause)
}

// LogAsync does the same work as Log before returning; the channel already
// holds the result.
func (l *Logger) LogAsync(payload any, sev Severity) <-chan error {
	return resolved(l.Log(payload, sev))
}

// ErrorAsync does the same work as Error before returning; the channel
// already holds the result.
func (l *Logger) ErrorAsync(payload any, cause any) <-chan error {
	return resolved(l.Error(payload, cause))
}

func resolved(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}
