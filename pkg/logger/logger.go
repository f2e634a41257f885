package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verboseMode bool
	level       = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base        *zap.Logger
	sugar       *zap.SugaredLogger
)

func init() {
	// Console output on stderr so stdout stays reserved for the report
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level)
	Replace(zap.New(core))
}

// Replace swaps the underlying logger. Tests use it to install zaptest/observer cores.
func Replace(l *zap.Logger) {
	base = l
	sugar = l.Sugar()
}

// L returns the underlying zap logger for structured logging.
func L() *zap.Logger {
	return base
}

// Level exposes the level shared by the default core.
func Level() zap.AtomicLevel {
	return level
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	verboseMode = verbose
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	return verboseMode
}

// Debugf logs a formatted debug message if verbose mode is enabled.
func Debugf(format string, v ...interface{}) {
	if verboseMode {
		sugar.Debugf(format, v...)
	}
}

// Infof logs a formatted informational message.
func Infof(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = base.Sync()
}
