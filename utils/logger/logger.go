package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a named, leveled logger backed by a zap sugared core.
type Logger struct {
	name  string
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewLogger("Default", "INFO", nil))
}

// NewLogger builds a console logger writing to w (stdout when nil).
// Level is one of DEBUG, INFO, WARN, ERROR; anything else means INFO.
func NewLogger(name, level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	atomicLevel := zap.NewAtomicLevelAt(parseLevel(level))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.NameKey = "logger"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeName = zapcore.FullNameEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), atomicLevel)
	return &Logger{
		name:  name,
		level: atomicLevel,
		sugar: zap.New(core).Named(name).Sugar(),
	}
}

// NewFileWriter returns a size-rotated log file writer.
func NewFileWriter(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zap.DebugLevel
	case "WARN", "WARNING":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) SetLevel(level string) {
	l.level.SetLevel(parseLevel(level))
}

func (l *Logger) Debugf(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// SetDefault replaces the logger used by the package-level helpers.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

func Default() *Logger {
	return defaultLogger.Load()
}

func Debugf(format string, args ...any) {
	Default().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	Default().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	Default().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	Default().Errorf(format, args...)
}
