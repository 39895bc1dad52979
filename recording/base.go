package recording

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/probe"
)

// Base holds the channel metadata shared by every extractor. Extractors
// embed *Base and add the trace accessors.
//
// Base is populated during construction and treated as read-only afterwards;
// it performs no locking.
type Base struct {
	numChannels       int
	samplingFrequency float64
	dtype             format.DType
	channelIDs        []string
	properties        *Properties
	annotations       map[string]any
	probe             *probe.Probe
}

// NewBase validates the shared recording parameters. Nil channelIDs default
// to "0".."N-1".
func NewBase(numChannels int, samplingFrequency float64, dtype format.DType, channelIDs []string) (*Base, error) {
	if numChannels <= 0 {
		return nil, fmt.Errorf("%w: num_channels must be positive, got %d", errs.ErrInvalidArgument, numChannels)
	}
	if !(samplingFrequency > 0) || math.IsInf(samplingFrequency, 0) {
		return nil, fmt.Errorf("%w: sampling_frequency must be positive, got %g", errs.ErrInvalidArgument, samplingFrequency)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidDType, dtype)
	}

	if channelIDs == nil {
		channelIDs = make([]string, numChannels)
		for i := range channelIDs {
			channelIDs[i] = strconv.Itoa(i)
		}
	} else {
		if len(channelIDs) != numChannels {
			return nil, fmt.Errorf("%w: %d channel ids for %d channels", errs.ErrInvalidArgument, len(channelIDs), numChannels)
		}
		seen := make(map[string]struct{}, len(channelIDs))
		for _, id := range channelIDs {
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("%w: duplicate channel id %q", errs.ErrInvalidArgument, id)
			}
			seen[id] = struct{}{}
		}
		channelIDs = slices.Clone(channelIDs)
	}

	return &Base{
		numChannels:       numChannels,
		samplingFrequency: samplingFrequency,
		dtype:             dtype,
		channelIDs:        channelIDs,
		properties:        NewProperties(numChannels),
		annotations:       make(map[string]any),
	}, nil
}

func (b *Base) NumChannels() int           { return b.numChannels }
func (b *Base) SamplingFrequency() float64 { return b.samplingFrequency }
func (b *Base) DType() format.DType        { return b.dtype }

// ChannelIDs returns a copy of the channel ids.
func (b *Base) ChannelIDs() []string {
	return slices.Clone(b.channelIDs)
}

// ChannelIndices resolves channel ids to indices.
func (b *Base) ChannelIndices(ids []string) ([]int, error) {
	out := make([]int, len(ids))
	for i, id := range ids {
		idx := slices.Index(b.channelIDs, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: unknown channel id %q", errs.ErrIndexOutOfRange, id)
		}
		out[i] = idx
	}

	return out, nil
}

// Properties returns the per-channel property table.
func (b *Base) Properties() *Properties {
	return b.properties
}

// Annotate sets a recording-level annotation.
func (b *Base) Annotate(key string, value any) {
	b.annotations[key] = value
}

// Annotation returns one recording-level annotation.
func (b *Base) Annotation(key string) (any, bool) {
	v, ok := b.annotations[key]
	return v, ok
}

// Annotations returns a copy of all recording-level annotations.
func (b *Base) Annotations() map[string]any {
	return maps.Clone(b.annotations)
}

// Probe returns the attached probe, or nil.
func (b *Base) Probe() *probe.Probe {
	return b.probe
}

// HasProbe reports whether a probe is attached.
func (b *Base) HasProbe() bool {
	return b.probe != nil
}

// SetProbe attaches a probe and derives the location, group and contact_id
// properties from it. Contacts map to channels through the probe's device
// channel indices. Channels with no contact get NaN coordinates and group -1.
//
// With format.GroupByShank and a multi-shank probe, each distinct shank id
// (in sorted order) becomes one group; otherwise wired channels are group 0.
func (b *Base) SetProbe(p *probe.Probe, mode format.GroupMode) error {
	if p == nil {
		return fmt.Errorf("%w: nil probe", errs.ErrInvalidArgument)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if p.NumContacts() > b.numChannels {
		return fmt.Errorf("%w: %d contacts for %d channels", errs.ErrProbeMismatch, p.NumContacts(), b.numChannels)
	}

	locations := make([][]float64, b.numChannels)
	for i := range locations {
		row := make([]float64, p.NDim)
		for d := range row {
			row[d] = math.NaN()
		}
		locations[i] = row
	}
	groups := make([]int, b.numChannels)
	for i := range groups {
		groups[i] = -1
	}
	contactIDs := make([]string, b.numChannels)

	shankGroup := map[string]int{}
	if mode == format.GroupByShank && p.HasShanks() {
		for i, s := range p.Shanks() {
			shankGroup[s] = i
		}
	}

	wired := make(map[int]struct{}, p.NumContacts())
	for contact := range p.NumContacts() {
		ch := p.ChannelIndex(contact)
		if ch < 0 {
			continue
		}
		if ch >= b.numChannels {
			return fmt.Errorf("%w: contact %d wired to channel %d of %d", errs.ErrProbeMismatch, contact, ch, b.numChannels)
		}
		if _, dup := wired[ch]; dup {
			return fmt.Errorf("%w: channel %d wired to more than one contact", errs.ErrProbeMismatch, ch)
		}
		wired[ch] = struct{}{}

		copy(locations[ch], p.Positions[contact])
		groups[ch] = 0
		if len(shankGroup) > 0 {
			groups[ch] = shankGroup[p.ShankIDs[contact]]
		}
		if p.ContactIDs != nil {
			contactIDs[ch] = p.ContactIDs[contact]
		}
	}

	if err := b.properties.Set(PropertyLocation, locations); err != nil {
		return err
	}
	if err := b.properties.Set(PropertyGroup, groups); err != nil {
		return err
	}
	if p.ContactIDs != nil {
		if err := b.properties.Set(PropertyContactID, contactIDs); err != nil {
			return err
		}
	}
	b.probe = p.Clone()

	return nil
}

// CopyMetadata copies channel ids, properties and annotations from a source
// recording when it exposes them. Channel counts must match.
func (b *Base) CopyMetadata(src Recording) error {
	if src.NumChannels() != b.numChannels {
		return fmt.Errorf("%w: source has %d channels, target %d", errs.ErrInvalidArgument, src.NumChannels(), b.numChannels)
	}
	if cl, ok := src.(ChannelLister); ok {
		if ids := cl.ChannelIDs(); len(ids) == b.numChannels {
			b.channelIDs = slices.Clone(ids)
		}
	}
	if ph, ok := src.(PropertyHolder); ok && ph.Properties() != nil {
		b.properties = ph.Properties().Clone()
	}

	return nil
}
