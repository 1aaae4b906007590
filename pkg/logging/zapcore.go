// pkg/logging/zapcore.go
package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewZapCore returns a zapcore.Core that routes zap entries through l, so
// code already written against zap shares the pipeline. The entry message
// becomes "message", fields become record keys and the logger name is kept
// under "logger". enab may be nil to accept every level.
func NewZapCore(l *Logger, enab zapcore.LevelEnabler) zapcore.Core {
	if enab == nil {
		enab = zapcore.DebugLevel
	}
	return &zapCore{logger: l, enab: enab}
}

type zapCore struct {
	logger *Logger
	enab   zapcore.LevelEnabler
	fields []zapcore.Field
}

func (c *zapCore) Enabled(lvl zapcore.Level) bool {
	return c.enab.Enabled(lvl)
}

func (c *zapCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &zapCore{logger: c.logger, enab: c.enab, fields: merged}
}

func (c *zapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *zapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	rec := Record(enc.Fields)
	if _, exists := rec[MessageKey]; !exists {
		rec[MessageKey] = ent.Message
	}
	if ent.LoggerName != "" {
		if _, exists := rec["logger"]; !exists {
			rec["logger"] = ent.LoggerName
		}
	}
	return c.logger.Log(rec, severityFromZap(ent.Level))
}

func (c *zapCore) Sync() error {
	return nil
}

// severityFromZap folds zap's levels onto the four severities.
func severityFromZap(lvl zapcore.Level) Severity {
	switch {
	case lvl < zapcore.InfoLevel:
		return Debug
	case lvl == zapcore.InfoLevel:
		return Info
	case lvl == zapcore.WarnLevel:
		return Warn
	default:
		return Error
	}
}
