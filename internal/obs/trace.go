package obs

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WithTrace returns a child logger carrying a fresh trace id, the closest
// groundable analogue to a tracing span available in this stack without
// pulling in an actual OpenTelemetry/Jaeger exporter. When enableJaeger is
// false it returns log unchanged, with no trace field.
func WithTrace(log *zap.Logger, enableJaeger bool) *zap.Logger {
	if !enableJaeger {
		return log
	}
	return log.With(zap.String("trace_id", uuid.NewString()))
}

// WithSpan tags a trace-carrying logger with a new span id for one unit of
// work (one substream) within that trace.
func WithSpan(log *zap.Logger, enableJaeger bool) *zap.Logger {
	if !enableJaeger {
		return log
	}
	return log.With(zap.String("span_id", uuid.NewString()))
}
