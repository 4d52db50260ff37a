package log

import (
	"errors"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ikenchina/rootbar/config"
)

var (
	glogger *zap.Logger
	sugar   *zap.SugaredLogger
)

func init() {
	glogger, _ = zap.NewProduction()
	sugar = glogger.Sugar()
}

var (
	ErrNoHandler = errors.New("no handler")
)

func InitLog(cfg config.LogConfig) error {
	syncers := []zapcore.WriteSyncer{}
	if cfg.Handler.File != nil {
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Handler.File.FileName,
			MaxSize:    cfg.Handler.File.MaxSize,
			MaxBackups: cfg.Handler.File.MaxBackups,
			MaxAge:     cfg.Handler.File.MaxAge,
		}))
	}
	if cfg.Handler.StdOut {
		syncers = append(syncers, zapcore.Lock(os.Stdout))
	}
	if cfg.Handler.StdErr {
		syncers = append(syncers, zapcore.Lock(os.Stderr))
	}
	if len(syncers) == 0 {
		return ErrNoHandler
	}

	w := zapcore.NewMultiWriteSyncer(syncers...)

	encodeCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if cfg.Caller != nil && *cfg.Caller {
		encodeCfg.CallerKey = "caller"
	}
	if cfg.Func != nil && *cfg.Func {
		encodeCfg.FunctionKey = "func"
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encodeCfg),
		w,
		cfg.Level(),
	)
	glogger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(cfg.StacktraceLevel()))
	sugar = glogger.Sugar()

	return nil
}

func Sync() error {
	return glogger.Sync()
}

func Panic(v ...interface{}) {
	sugar.Panic(v...)
}

func Errorf(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

func Infof(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

func Debugf(format string, v ...interface{}) {
	sugar.Debugf(format, v...)
}
