package spikeglx

import (
	"github.com/arloliu/ephys/recording"
)

// RawIO parses a SpikeGLX folder. Implementations wrap a vendor parsing
// library.
type RawIO interface {
	// Parse opens the folder. loadSyncChannel includes the trailing digital
	// sync channel in every imec stream.
	Parse(folder string, loadSyncChannel bool) (Dataset, error)
}

// RawIOFunc adapts a function to the RawIO interface.
type RawIOFunc func(folder string, loadSyncChannel bool) (Dataset, error)

// Parse calls f(folder, loadSyncChannel).
func (f RawIOFunc) Parse(folder string, loadSyncChannel bool) (Dataset, error) {
	return f(folder, loadSyncChannel)
}

// Dataset is a parsed folder.
type Dataset interface {
	Streams() []Stream
}

// Stream is one signal stream of a dataset. Trace access follows the
// recording.Recording contract and may be served lazily.
type Stream interface {
	recording.Recording

	// ID is the stream name, e.g. "imec0.ap".
	ID() string
	// MetaFile is the path of the stream's .meta file.
	MetaFile() string
	ChannelIDs() []string
	// Gains and Offsets convert raw values to microvolts. Either may be nil.
	Gains() []float64
	Offsets() []float64
	// Annotations holds the raw stream annotations.
	Annotations() map[string]any
}
