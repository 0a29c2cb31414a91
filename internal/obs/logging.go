package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide logger. levelName is one of
// debug/info/warn/error (per the config surface's log_level key); an
// unrecognized level falls back to info. When enableLogFile is set and
// logPath is non-empty, log output is written there in addition to stdout -
// zap's own OutputPaths,
// rather than reaching for an ungrounded external rotation library.
func NewLogger(levelName, logPath string, enableLogFile bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	if enableLogFile && logPath != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logPath)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}
