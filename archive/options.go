package archive

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/internal/options"
)

const (
	// DefaultChunkSize is the number of samples per chunk unless
	// WithChunkSize says otherwise.
	DefaultChunkSize = 4096
	// DefaultConcurrency is the number of chunks compressed at once.
	DefaultConcurrency = 4
	// DefaultCompression is the chunk codec unless WithCompression says otherwise.
	DefaultCompression = format.CompressionZstd
)

// Config holds the settings of Write and Open.
type Config struct {
	compression format.CompressionType
	chunkSize   int
	concurrency int
	overwrite   bool
	engine      endian.EndianEngine
	logger      *slog.Logger
}

// Option configures Write and Open.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	return options.Build(&Config{
		compression: DefaultCompression,
		chunkSize:   DefaultChunkSize,
		concurrency: DefaultConcurrency,
		engine:      endian.GetLittleEndianEngine(),
		logger:      slog.New(slog.DiscardHandler),
	}, opts...)
}

// WithCompression selects the chunk codec.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *Config) error {
		switch compression {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = compression
			return nil
		default:
			return fmt.Errorf("%w: unsupported compression %s", errs.ErrInvalidArgument, compression)
		}
	})
}

// WithChunkSize sets the number of samples per chunk.
func WithChunkSize(samples int) Option {
	return options.New(func(c *Config) error {
		if samples <= 0 || int64(samples) > 1<<32-1 {
			return fmt.Errorf("%w: chunk size out of range: %d", errs.ErrInvalidArgument, samples)
		}
		c.chunkSize = samples

		return nil
	})
}

// WithConcurrency sets how many chunks are read and compressed at once.
// Chunks are always written in order.
func WithConcurrency(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: concurrency must be positive, got %d", errs.ErrInvalidArgument, n)
		}
		c.concurrency = n

		return nil
	})
}

// WithOverwrite allows Write to replace an existing file.
func WithOverwrite(overwrite bool) Option {
	return options.NoError(func(c *Config) {
		c.overwrite = overwrite
	})
}

// WithByteOrder sets the byte order of the header, the tables and the
// samples. The default is little-endian.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *Config) error {
		if engine == nil {
			return fmt.Errorf("%w: nil byte order", errs.ErrInvalidArgument)
		}
		c.engine = engine

		return nil
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
