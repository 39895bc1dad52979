package binaryrec

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/internal/options"
	"github.com/arloliu/ephys/internal/pool"
)

// DefaultConcurrency is the number of segments written at once unless
// WithConcurrency says otherwise.
const DefaultConcurrency = 1

// Config holds the settings shared by Open, Write and their folder variants.
// Options that do not apply to an operation are ignored by it.
type Config struct {
	timeAxis   format.TimeAxis
	fileOffset int64
	engine     endian.EndianEngine
	logger     *slog.Logger

	// read side
	gains      []float64
	offsets    []float64
	channelIDs []string
	verify     bool

	// write side
	dtype       format.DType
	chunkSize   int
	overwrite   bool
	concurrency int
}

// Option configures Open, Write, OpenFolder and WriteFolder.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	return options.Build(&Config{
		timeAxis:    format.TimeMajor,
		engine:      endian.GetNativeEngine(),
		logger:      slog.New(slog.DiscardHandler),
		concurrency: DefaultConcurrency,
	}, opts...)
}

// chunkSamples returns the number of samples read per chunk for a frame of
// frameSize bytes. The default keeps one chunk near the pooled buffer size.
func (c *Config) chunkSamples(frameSize int) int {
	if c.chunkSize > 0 {
		return c.chunkSize
	}
	if frameSize <= 0 {
		return 1
	}

	return max(1, pool.ChunkBufferDefaultSize/frameSize)
}

// WithTimeAxis selects the physical sample layout. The default is time-major.
func WithTimeAxis(axis format.TimeAxis) Option {
	return options.New(func(c *Config) error {
		if !axis.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidTimeAxis, axis)
		}
		c.timeAxis = axis

		return nil
	})
}

// WithFileOffset skips offset header bytes at the start of every file on read.
func WithFileOffset(offset int64) Option {
	return options.New(func(c *Config) error {
		if offset < 0 {
			return fmt.Errorf("%w: negative file offset %d", errs.ErrInvalidArgument, offset)
		}
		c.fileOffset = offset

		return nil
	})
}

// WithByteOrder sets the byte order of the files. The default is the host order.
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

// WithGainToUV sets the gain_to_uV property on open, either one value per
// channel or a single value for all channels. Sample values are not changed.
func WithGainToUV(gains ...float64) Option {
	return options.NoError(func(c *Config) {
		c.gains = gains
	})
}

// WithOffsetToUV sets the offset_to_uV property on open, per channel or scalar.
func WithOffsetToUV(offsets ...float64) Option {
	return options.NoError(func(c *Config) {
		c.offsets = offsets
	})
}

// WithChannelIDs names the channels on open. The default is "0".."N-1".
func WithChannelIDs(ids []string) Option {
	return options.NoError(func(c *Config) {
		c.channelIDs = ids
	})
}

// WithVerify makes OpenFolder re-hash every segment file and compare it
// with the checksum recorded in binary.yaml.
func WithVerify(verify bool) Option {
	return options.NoError(func(c *Config) {
		c.verify = verify
	})
}

// WithDType sets the dtype written. The default is the source dtype; a
// narrowing cast is logged and reported in the WriteResult.
func WithDType(dtype format.DType) Option {
	return options.New(func(c *Config) error {
		if !dtype.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrInvalidDType, dtype)
		}
		c.dtype = dtype

		return nil
	})
}

// WithChunkSize sets the number of samples read from the source per chunk.
func WithChunkSize(samples int) Option {
	return options.New(func(c *Config) error {
		if samples <= 0 {
			return fmt.Errorf("%w: chunk size must be positive, got %d", errs.ErrInvalidArgument, samples)
		}
		c.chunkSize = samples

		return nil
	})
}

// WithOverwrite allows Write to replace existing files.
func WithOverwrite(overwrite bool) Option {
	return options.NoError(func(c *Config) {
		c.overwrite = overwrite
	})
}

// WithConcurrency sets how many segments are written at once.
func WithConcurrency(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: concurrency must be positive, got %d", errs.ErrInvalidArgument, n)
		}
		c.concurrency = n

		return nil
	})
}
