package logger

import "go.uber.org/zap"

type ZapLogger struct {
	log   *zap.SugaredLogger
	level zap.AtomicLevel
}

var zapLogger *ZapLogger

// NewLogger builds the global logger. The package-level helpers add two
// frames, which the caller skip accounts for.
func NewLogger(config zap.Config) (*ZapLogger, error) {
	l, err := config.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}
	zapLogger = &ZapLogger{log: l.Sugar(), level: config.Level}
	return zapLogger, nil
}

func GetLogger() *ZapLogger {
	if zapLogger == nil {
		panic("logger not initialized")
	}
	return zapLogger
}

// Named loggers are called directly, one frame less than the helpers.
func (l *ZapLogger) Named(name string) Logger {
	return &ZapLogger{
		log:   l.log.Desugar().WithOptions(zap.AddCallerSkip(-1)).Named(name).Sugar(),
		level: l.level,
	}
}

func (l *ZapLogger) SetLevel(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl.Level())
	return nil
}

func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

func (l *ZapLogger) Panic(message string, values ...any) {
	l.log.Panicw(message, values...)
}

func (l *ZapLogger) Fatal(err error, values ...any) {
	l.log.Fatalw(err.Error(), values...)
}

func (l *ZapLogger) Info(message string, values ...any) {
	l.log.Infow(message, values...)
}

func (l *ZapLogger) Warn(message string, values ...any) {
	l.log.Warnw(message, values...)
}

func (l *ZapLogger) Error(message string, values ...any) {
	l.log.Errorw(message, values...)
}

func (l *ZapLogger) Debug(message string, values ...any) {
	l.log.Debugw(message, values...)
}

// Printf serves fasthttp's internal logger. Its messages are connection
// noise, so they are logged at debug.
func (l *ZapLogger) Printf(format string, args ...any) {
	l.log.Debugf(format, args...)
}
