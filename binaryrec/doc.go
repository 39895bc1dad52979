// Package binaryrec reads and writes recordings stored as flat binary files.
//
// # File layout
//
// A recording is one file per segment. Each file optionally starts with
// FileOffset header bytes, which are skipped on read and never written,
// followed by num_samples*num_channels fixed-width samples. The samples are
// laid out time-major (all channels of sample 0, then sample 1, ...) or
// channel-major (all samples of channel 0, then channel 1, ...). Samples use
// the host byte order unless WithByteOrder selects another.
//
// Opening validates that every file payload is a whole number of frames and
// memory maps the files; no sample data is read until Traces is called. A
// time-major read of all channels in native byte order aliases the mapping
// directly, any other read copies.
//
// # Writing
//
// Write materializes any recording.Recording into this layout, reading the
// source in bounded chunks so peak memory stays at one chunk per segment in
// flight. Segments are independent files and may be written concurrently;
// chunks within a file are always written in time order.
//
// WriteFolder and OpenFolder add a binary.yaml description next to the
// segment files so a folder can be reopened without restating its shape.
package binaryrec
