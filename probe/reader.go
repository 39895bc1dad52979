package probe

// Reader loads probe geometry from a vendor metadata file. Implementations
// live outside this module; the spikeglx adapter only depends on this
// contract.
type Reader interface {
	Read(metaFile string) (*Probe, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(metaFile string) (*Probe, error)

// Read calls f(metaFile).
func (f ReaderFunc) Read(metaFile string) (*Probe, error) {
	return f(metaFile)
}
