package diag

import (
	"go.uber.org/zap"
)

// ZapSink writes diagnostics through a zap logger. This is the default
// sink for the CLIs; the pipeline itself only ever sees the Sink
// interface.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink wraps an existing zap logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// NewDevelopmentSink builds a sink backed by zap's development config,
// falling back to a no-op logger if construction fails.
func NewDevelopmentSink() *ZapSink {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (z *ZapSink) Report(d Diagnostic) {
	fields := []zap.Field{
		zap.String("stage", string(d.Stage)),
	}
	if d.Where.Line > 0 {
		fields = append(fields, zap.Int("line", d.Where.Line), zap.Int("col", d.Where.Col))
	}
	switch d.Severity {
	case Error:
		z.logger.Error(d.Message, fields...)
	case Warning:
		z.logger.Warn(d.Message, fields...)
	default:
		z.logger.Info(d.Message, fields...)
	}
}

// Sync flushes buffered log entries.
func (z *ZapSink) Sync() {
	_ = z.logger.Sync()
}
