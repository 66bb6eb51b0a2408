// Package logging configura zap para todo el proceso. En desarrollo la
// salida es legible por consola; en producción es JSON a stderr.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log struct {
	Base   *zap.Logger
	Sugar  *zap.SugaredLogger
	Level  zap.AtomicLevel
	Closer func()
}

// Init arma el logger según LOG_LEVEL y ENV. Un nivel inválido no corta el
// arranque: se cae a info.
func Init(nivel, env string) (*Log, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(nivel))); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	base := zap.New(
		zapcore.NewCore(encoder(env), zapcore.Lock(os.Stderr), lvl),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	return &Log{
		Base:   base,
		Sugar:  base.Sugar(),
		Level:  lvl,
		Closer: func() { _ = base.Sync() },
	}, nil
}

func encoder(env string) zapcore.Encoder {
	if strings.ToLower(env) == "prod" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
