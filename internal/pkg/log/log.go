package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const TimeFormat = "2006-01-02 15:04:05.999"

var AtomicLevel = zap.NewAtomicLevel() // 运行时可调整日志级别

var GlobalLogger = MustNewLogger()

// SetLevel 修改全局日志级别
func SetLevel(level string) {
	if level == "" {
		return
	}
	if err := AtomicLevel.UnmarshalText([]byte(level)); err != nil {
		GlobalLogger.Warn("invalid log level", zap.String("level", level))
		return
	}
	GlobalLogger.Info("logger level updated", zap.String("level", level))
}

func MustNewLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.Level = AtomicLevel
	// level from env
	_ = AtomicLevel.UnmarshalText([]byte(os.Getenv("LOG_LEVEL")))
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeFormat)
	config.DisableStacktrace = true
	config.Sampling = nil
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

// Named 返回带模块名的 logger
func Named(name string) *zap.Logger {
	return GlobalLogger.Named(name)
}

// MaskIP 日志中只保留 IP 前缀
func MaskIP(ip string) string {
	if len(ip) <= 8 {
		return ip
	}
	return ip[:8] + "..."
}

func Fatalf(format string, v ...interface{}) {
	GlobalLogger.WithOptions(zap.AddCallerSkip(1)).Sugar().Fatalf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	GlobalLogger.WithOptions(zap.AddCallerSkip(1)).Sugar().Errorf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	GlobalLogger.WithOptions(zap.AddCallerSkip(1)).Sugar().Warnf(format, v...)
}

func Infof(format string, v ...interface{}) {
	GlobalLogger.WithOptions(zap.AddCallerSkip(1)).Sugar().Infof(format, v...)
}

func Debugf(format string, v ...interface{}) {
	GlobalLogger.WithOptions(zap.AddCallerSkip(1)).Sugar().Debugf(format, v...)
}
