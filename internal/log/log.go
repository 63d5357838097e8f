package log

import (
	"go.uber.org/zap"

	"github.com/pkg/errors"
)

// Options controls how the application logger is built.
type Options struct {
	// Enabled turns logging on. When false, New returns a nop logger.
	Enabled bool
	// Verbose switches to a development console encoder at debug level.
	Verbose bool
	// Path redirects output to a file instead of stderr.
	Path string
}

// New builds a *zap.Logger from the options. It is the single place
// where encoder and level decisions are made; packages receive the
// logger through their own options and default to zap.NewNop().
func New(opts Options) (*zap.Logger, error) {
	if !opts.Enabled {
		return zap.NewNop(), nil
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	if opts.Path != "" {
		cfg.OutputPaths = []string{opts.Path}
		cfg.ErrorOutputPaths = []string{opts.Path}
	}

	l, err := cfg.Build()
	return l, errors.WithStack(err)
}
