package spikeglx

import (
	"log/slog"

	"github.com/arloliu/ephys/internal/options"
	"github.com/arloliu/ephys/probe"
)

// Config holds the Open settings.
type Config struct {
	streamID       string
	loadSync       bool
	allAnnotations bool
	probeReader    probe.Reader
	logger         *slog.Logger
}

// Option configures Open.
type Option = options.Option[*Config]

// WithStreamID selects a stream such as "imec0.ap". It is required when
// the folder holds more than one stream.
func WithStreamID(id string) Option {
	return options.NoError(func(c *Config) {
		c.streamID = id
	})
}

// WithSyncChannel loads the trailing sync channel. No probe and no
// inter-sample shift are attached in that case.
func WithSyncChannel(load bool) Option {
	return options.NoError(func(c *Config) {
		c.loadSync = load
	})
}

// WithAllAnnotations copies every raw stream annotation instead of the
// curated subset.
func WithAllAnnotations(all bool) Option {
	return options.NoError(func(c *Config) {
		c.allAnnotations = all
	})
}

// WithProbeReader sets the geometry reader used for imec streams.
func WithProbeReader(r probe.Reader) Option {
	return options.NoError(func(c *Config) {
		c.probeReader = r
	})
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	})
}
