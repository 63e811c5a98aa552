package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Debug bool
}

// NewLogger creates a zap logger. Debug enables the human readable development
// encoder at debug level, otherwise a production JSON logger at info level is built.
func NewLogger(cfg *LoggerConfig, options ...zap.Option) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &LoggerConfig{}
	}

	var zapConfig zap.Config
	if cfg.Debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stdout is reserved for command output
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	return zapConfig.Build(options...)
}
