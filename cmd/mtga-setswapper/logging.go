package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/jeandeaual/mtga-setswapper/config"
	"github.com/jeandeaual/mtga-setswapper/log"
)

var logger *zap.Logger

func setupLogger(debug bool, format string) error {
	var zapConf zap.Config

	if debug {
		zapConf = zap.NewDevelopmentConfig()
		zapConf.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	} else {
		zapConf = zap.NewProductionConfig()
		zapConf.Encoding = "console"
		zapConf.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		zapConf.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
		zapConf.EncoderConfig.EncodeCaller = nil
	}

	switch format {
	case config.LogFormatJSON:
		zapConf.Encoding = "json"
	case config.LogFormatConsole:
		zapConf.Encoding = "console"
	default:
		// Logs go to stderr, switch to JSON when it's redirected
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			zapConf.Encoding = "json"
		}
	}

	// Skip 1 caller, since all log calls will be done from the log package
	l, err := zapConf.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	logger = l
	log.SetLogger(logger.Sugar())

	return nil
}

func syncLogger() {
	if logger != nil {
		// Don't check for errors since logger.Sync() can sometimes fail
		// even if the logs were properly displayed
		// See https://github.com/uber-go/zap/issues/328
		_ = logger.Sync()
	}
}
