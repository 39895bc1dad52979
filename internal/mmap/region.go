package mmap

// Region represents a subsection of a memory mapping.
// It does not own the memory; the parent Mapping does.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region creates a new view into the mapping.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > m.size {
		return nil, ErrOutOfBounds
	}

	return &Region{
		parent: m,
		offset: offset,
		size:   size,
	}, nil
}

// Bytes returns the byte slice for this region, or nil once the parent
// mapping is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	if r.size == 0 {
		return []byte{}
	}

	return r.parent.data[r.offset : r.offset+r.size]
}

// Size returns the region size in bytes.
func (r *Region) Size() int {
	return r.size
}

// Slice returns bytes [start, end) relative to the region start.
func (r *Region) Slice(start, end int) ([]byte, error) {
	if r.parent.closed.Load() {
		return nil, ErrClosed
	}
	if start < 0 || end < start || end > r.size {
		return nil, ErrOutOfBounds
	}
	if start == end {
		return []byte{}, nil
	}

	return r.parent.data[r.offset+start : r.offset+end], nil
}

// Advise provides hints to the kernel about how this region will be accessed.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	if r.size == 0 {
		return nil
	}

	return osAdvise(r.parent.data[r.offset:r.offset+r.size], pattern)
}
