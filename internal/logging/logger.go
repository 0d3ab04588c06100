// Package logging builds the per-run zap logger. Every run (ingestion or
// validation) gets its own logger writing the same lines to stdout and to a
// timestamped file under the log directory; there is no package-level logger.
package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp format of every log line.
const TimeLayout = "2006-01-02 15:04:05"

// FileTimeLayout is the timestamp embedded in log file names.
const FileTimeLayout = "20060102_150405"

// Stage names used for log file prefixes.
const (
	StageIngestion  = "ingestion"
	StageValidation = "validation"
)

// Config holds logging configuration.
type Config struct {
	// Dir receives the log files. It is created when missing.
	Dir string
	// Level is the minimum level written; the zero value is info.
	Level zapcore.Level
	// Quiet disables the stdout copy.
	Quiet bool
}

// Logger wraps zap with the file it owns.
type Logger struct {
	zap  *zap.Logger
	file *os.File
	path string
}

// New creates the logger for one run of stage. The log file is
// <Dir>/<stage>_<now as FileTimeLayout>.log.
func New(cfg Config, stage string, now time.Time) (*Logger, error) {
	if cfg.Dir == "" {
		return nil, errors.New("logging: empty log directory")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(cfg.Dir, FileName(stage, now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	enc := newEncoder()
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(f), cfg.Level)}
	if !cfg.Quiet {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stdout), cfg.Level))
	}

	return &Logger{
		zap:  zap.New(zapcore.NewTee(cores...)),
		file: f,
		path: path,
	}, nil
}

// FileName returns the log file name for stage at t.
func FileName(stage string, t time.Time) string {
	return stage + "_" + t.Format(FileTimeLayout) + ".log"
}

// ParseLevel parses a level name; the empty string means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// newEncoder renders "<time> - <LEVEL> - <message>" followed by fields.
func newEncoder() zapcore.Encoder {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
	return zapcore.NewConsoleEncoder(encoderCfg)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// With returns a child logger carrying fields. The child shares the parent's
// file but does not own it.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...), path: l.path}
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger { return l.zap }

// Path returns the log file path, empty for loggers without a file.
func (l *Logger) Path() string { return l.path }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	err := l.zap.Sync()
	// stdout cannot be fsynced on most terminals and pipes.
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// Close flushes the logger and closes the file it owns. Closing twice is a
// no-op.
func (l *Logger) Close() error {
	if l.file == nil {
		return l.Sync()
	}
	err := l.Sync()
	err = errors.Join(err, l.file.Close())
	l.file = nil
	l.zap = zap.NewNop()
	return err
}

func isStdoutSyncError(err error) bool {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return errors.Is(pe.Err, syscall.EINVAL) || errors.Is(pe.Err, syscall.ENOTTY) || errors.Is(pe.Err, syscall.EBADF)
	}
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
