package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var l *zap.Logger = zap.NewNop()

// Init builds the process logger. Call once from main before anything logs.
func Init(env string) {
	var err error
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
}

func L() *zap.Logger {
	return l
}

func Sync() {
	_ = l.Sync()
}
