// Package probe describes the spatial layout of electrode contacts.
//
// A Probe is produced by a geometry collaborator from vendor metadata (see
// Reader) and attached to a recording with recording.Base.SetProbe, which
// turns contact positions and shank membership into per-channel properties.
package probe

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/ephys/errs"
)

// Annotation keys set by geometry readers.
const (
	AnnotationProbeType = "imDatPrb_type"
	AnnotationModelName = "model_name"
	AnnotationSerial    = "serial_number"
)

// Probe is the contact geometry of one probe.
type Probe struct {
	// NDim is 2 or 3.
	NDim int
	// Positions holds one NDim-long coordinate row per contact, in um.
	Positions [][]float64
	// ContactIDs optionally names each contact.
	ContactIDs []string
	// ShankIDs optionally assigns each contact to a shank. Empty means the
	// probe has a single shank.
	ShankIDs []string
	// DeviceChannelIndices maps contact i to a recording channel. Nil means
	// contact i is wired to channel i; -1 marks an unconnected contact.
	DeviceChannelIndices []int
	// Annotations holds reader specific metadata such as the probe type code.
	Annotations map[string]any
}

// New creates a probe from contact positions.
func New(ndim int, positions [][]float64) (*Probe, error) {
	p := &Probe{
		NDim:        ndim,
		Positions:   positions,
		Annotations: make(map[string]any),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// NumContacts returns the number of contacts.
func (p *Probe) NumContacts() int {
	return len(p.Positions)
}

// HasShanks reports whether contacts carry shank ids.
func (p *Probe) HasShanks() bool {
	return len(p.ShankIDs) > 0
}

// Shanks returns the distinct shank ids in sorted order.
func (p *Probe) Shanks() []string {
	if !p.HasShanks() {
		return nil
	}
	shanks := slices.Clone(p.ShankIDs)
	slices.Sort(shanks)

	return slices.Compact(shanks)
}

// Annotation returns a single annotation value.
func (p *Probe) Annotation(key string) (any, bool) {
	if p.Annotations == nil {
		return nil, false
	}
	v, ok := p.Annotations[key]

	return v, ok
}

// Annotate sets an annotation value.
func (p *Probe) Annotate(key string, value any) {
	if p.Annotations == nil {
		p.Annotations = make(map[string]any)
	}
	p.Annotations[key] = value
}

// Validate checks that all per-contact slices agree in length.
func (p *Probe) Validate() error {
	if p.NDim != 2 && p.NDim != 3 {
		return fmt.Errorf("%w: probe ndim must be 2 or 3, got %d", errs.ErrInvalidArgument, p.NDim)
	}
	for i, pos := range p.Positions {
		if len(pos) != p.NDim {
			return fmt.Errorf("%w: contact %d has %d coordinates, want %d", errs.ErrInvalidArgument, i, len(pos), p.NDim)
		}
	}

	n := p.NumContacts()
	if p.ContactIDs != nil && len(p.ContactIDs) != n {
		return fmt.Errorf("%w: %d contact ids for %d contacts", errs.ErrInvalidArgument, len(p.ContactIDs), n)
	}
	if p.ShankIDs != nil && len(p.ShankIDs) != n {
		return fmt.Errorf("%w: %d shank ids for %d contacts", errs.ErrInvalidArgument, len(p.ShankIDs), n)
	}
	if p.DeviceChannelIndices != nil && len(p.DeviceChannelIndices) != n {
		return fmt.Errorf("%w: %d device channel indices for %d contacts", errs.ErrInvalidArgument, len(p.DeviceChannelIndices), n)
	}

	return nil
}

// ChannelIndex returns the recording channel wired to contact i, or -1.
func (p *Probe) ChannelIndex(i int) int {
	if p.DeviceChannelIndices == nil {
		return i
	}

	return p.DeviceChannelIndices[i]
}

// Clone returns a deep copy.
func (p *Probe) Clone() *Probe {
	c := &Probe{
		NDim:                 p.NDim,
		Positions:            make([][]float64, len(p.Positions)),
		ContactIDs:           slices.Clone(p.ContactIDs),
		ShankIDs:             slices.Clone(p.ShankIDs),
		DeviceChannelIndices: slices.Clone(p.DeviceChannelIndices),
		Annotations:          maps.Clone(p.Annotations),
	}
	for i, pos := range p.Positions {
		c.Positions[i] = slices.Clone(pos)
	}

	return c
}
