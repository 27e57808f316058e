package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured entries tagged with a trace id and the layer that
// produced them (SERVICE, REPOSITORY, HTTP, CRON, NATS).
type Logger struct {
	zl *zap.Logger
}

func New(env string) (*Logger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	switch strings.ToLower(env) {
	case "prod", "production":
		zl, err = zap.NewProduction()
	default:
		zl, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return &Logger{zl: zl}, nil
}

func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// FromZap wraps an existing zap logger, mostly for tests using observers.
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) Log(level zapcore.Level, traceID string, msg string, fields map[string]any, layer string, err error) {
	if l == nil || l.zl == nil {
		return
	}
	ce := l.zl.Check(level, msg)
	if ce == nil {
		return
	}
	zf := make([]zap.Field, 0, len(fields)+3)
	if traceID != "" {
		zf = append(zf, zap.String("traceId", traceID))
	}
	if layer != "" {
		zf = append(zf, zap.String("layer", layer))
	}
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	ce.Write(zf...)
}

func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

func (l *Logger) Sync() {
	_ = l.zl.Sync()
}
