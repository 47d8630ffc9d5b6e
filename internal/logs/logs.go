// Package logs builds the zap logger used by the service and adapts it to
// the narrower logging surfaces of the assembler and gorm.
package logs

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls log level and the optional rotating JSON file.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Dev        bool   `mapstructure:"dev"`
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// New builds a named logger writing coloured console lines to stderr and,
// when cfg.File is set, JSON lines to a rotating file. The returned level can
// be changed at runtime.
func New(appName string, cfg Config) (*zap.Logger, zap.AtomicLevel) {
	return newWithConsole(appName, cfg, zapcore.Lock(os.Stderr))
}

func newWithConsole(appName string, cfg Config, console zapcore.WriteSyncer) (*zap.Logger, zap.AtomicLevel) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	fileCfg := encoderCfg
	fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), console, level)
	if cfg.File != "" {
		var file io.Writer = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    max(1, cfg.MaxSize),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAge),
			Compress:   cfg.Compress,
		}
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Dev {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}
	return zap.New(core, opts...).Named(appName), level
}

// CoreLogger adapts a zap logger to the key/value Logger the assembler uses.
type CoreLogger struct {
	s *zap.SugaredLogger
}

// NewCoreLogger wraps l. A nil logger yields a no-op adapter.
func NewCoreLogger(l *zap.Logger) *CoreLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &CoreLogger{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (c *CoreLogger) Debug(msg string, args ...any) { c.s.Debugw(msg, args...) }
func (c *CoreLogger) Info(msg string, args ...any)  { c.s.Infow(msg, args...) }
func (c *CoreLogger) Warn(msg string, args ...any)  { c.s.Warnw(msg, args...) }
func (c *CoreLogger) Error(msg string, args ...any) { c.s.Errorw(msg, args...) }
