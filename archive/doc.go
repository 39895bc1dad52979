// Package archive stores a whole recording in one compressed, chunked file.
//
// Write cuts every segment into chunks of ChunkSize samples across all
// channels, compresses each chunk with the configured codec and records an
// xxHash64 of the decoded chunk in the index. Open maps the file and exposes
// it as a recording.Recording; a Traces call decodes only the chunks that
// overlap the requested range and verifies their checksums.
//
// Channel ids, gain_to_uV and offset_to_uV travel with the file. Probe
// geometry and other properties do not.
//
// The binary layout is described in package section.
package archive
