// Package mmap provides read-only memory-mapped file access for lazy,
// zero-copy trace reads.
//
// # Usage
//
//	m, err := mmap.Open("traces_seg0.raw")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Skip an embedded header and view the sample payload
//	region, _ := m.Region(headerSize, m.Size()-headerSize)
//	region.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) access hints via golang.org/x/sys/unix
//   - Other platforms: the file is read into memory once; Advise is a no-op
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent read access. Close is
// idempotent and guarded by an atomic flag, but callers must ensure no
// goroutine still uses Bytes() after Close returns.
package mmap
