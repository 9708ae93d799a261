package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new logger instance
func New(environment string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	return config.Build(zap.AddCaller())
}

// NewComponent creates a logger tagged with the component name, so the two
// binaries and the cron jobs can be told apart in aggregated output.
func NewComponent(environment, component string) (*zap.Logger, error) {
	log, err := New(environment)
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("component", component)), nil
}
