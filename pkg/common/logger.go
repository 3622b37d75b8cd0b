package common

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger from APP_ENV: colored console output
// for dev and qa, JSON to stdout otherwise.
func NewLogger() (*zap.Logger, error) {
	var config zap.Config
	switch os.Getenv("APP_ENV") {
	case "dev", "qa":
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	}
	return config.Build()
}
