package recording

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/ephys/errs"
)

// Well-known per-channel property keys.
const (
	// PropertyInterSampleShift is the fractional-sample acquisition delay of
	// each channel within a multiplexed ADC cycle, in [0, 1).
	PropertyInterSampleShift = "inter_sample_shift"
	// PropertyGainToUV converts raw sample values to microvolts.
	PropertyGainToUV = "gain_to_uV"
	// PropertyOffsetToUV is added after the gain is applied.
	PropertyOffsetToUV = "offset_to_uV"
	// PropertyLocation holds the probe contact coordinates of each channel.
	PropertyLocation = "location"
	// PropertyGroup holds the electrode group (shank) index of each channel.
	PropertyGroup = "group"
	// PropertyContactID holds the probe contact id wired to each channel.
	PropertyContactID = "contact_id"
)

// Properties is a per-channel key/value table. Every value holds exactly one
// entry per channel. Supported value types are []float64, []int, []string,
// []bool and [][]float64 (one row per channel).
//
// Typed accessors cover the well-known keys; any other key is an open
// extension slot for vendor-specific data.
type Properties struct {
	numChannels int
	values      map[string]any
}

// NewProperties creates an empty table for numChannels channels.
func NewProperties(numChannels int) *Properties {
	return &Properties{numChannels: numChannels, values: make(map[string]any)}
}

// NumChannels returns the channel count the table was built for.
func (p *Properties) NumChannels() int {
	return p.numChannels
}

// Set stores a copy of values under key.
func (p *Properties) Set(key string, values any) error {
	if key == "" {
		return fmt.Errorf("%w: empty property key", errs.ErrInvalidArgument)
	}

	var (
		n      int
		stored any
	)
	switch v := values.(type) {
	case []float64:
		n, stored = len(v), slices.Clone(v)
	case []int:
		n, stored = len(v), slices.Clone(v)
	case []string:
		n, stored = len(v), slices.Clone(v)
	case []bool:
		n, stored = len(v), slices.Clone(v)
	case [][]float64:
		rows := make([][]float64, len(v))
		for i, row := range v {
			rows[i] = slices.Clone(row)
		}
		n, stored = len(v), rows
	default:
		return fmt.Errorf("%w: unsupported property type %T for %q", errs.ErrInvalidArgument, values, key)
	}
	if n != p.numChannels {
		return fmt.Errorf("%w: %q has %d values for %d channels", errs.ErrPropertyLength, key, n, p.numChannels)
	}

	p.values[key] = stored

	return nil
}

// Get returns the raw stored value.
func (p *Properties) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is set.
func (p *Properties) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Delete removes key.
func (p *Properties) Delete(key string) {
	delete(p.values, key)
}

// Keys returns the property keys in sorted order.
func (p *Properties) Keys() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Float64s returns a copy of a float property.
func (p *Properties) Float64s(key string) ([]float64, bool) {
	v, ok := p.values[key].([]float64)
	return slices.Clone(v), ok
}

// Ints returns a copy of an integer property.
func (p *Properties) Ints(key string) ([]int, bool) {
	v, ok := p.values[key].([]int)
	return slices.Clone(v), ok
}

// Strings returns a copy of a string property.
func (p *Properties) Strings(key string) ([]string, bool) {
	v, ok := p.values[key].([]string)
	return slices.Clone(v), ok
}

// Rows returns a copy of a row-per-channel property such as locations.
func (p *Properties) Rows(key string) ([][]float64, bool) {
	v, ok := p.values[key].([][]float64)
	if !ok {
		return nil, false
	}
	rows := make([][]float64, len(v))
	for i, row := range v {
		rows[i] = slices.Clone(row)
	}

	return rows, true
}

// InterSampleShift returns the per-channel sample shifts.
func (p *Properties) InterSampleShift() ([]float64, bool) {
	return p.Float64s(PropertyInterSampleShift)
}

// SetInterSampleShift stores per-channel sample shifts.
func (p *Properties) SetInterSampleShift(shifts []float64) error {
	return p.Set(PropertyInterSampleShift, shifts)
}

// Gains returns the gain_to_uV property.
func (p *Properties) Gains() ([]float64, bool) {
	return p.Float64s(PropertyGainToUV)
}

// Offsets returns the offset_to_uV property.
func (p *Properties) Offsets() ([]float64, bool) {
	return p.Float64s(PropertyOffsetToUV)
}

// SetGains stores gain_to_uV. A single value is broadcast to every channel.
func (p *Properties) SetGains(gains ...float64) error {
	return p.Set(PropertyGainToUV, p.broadcast(gains))
}

// SetOffsets stores offset_to_uV. A single value is broadcast to every channel.
func (p *Properties) SetOffsets(offsets ...float64) error {
	return p.Set(PropertyOffsetToUV, p.broadcast(offsets))
}

// Locations returns the probe contact coordinates of each channel.
func (p *Properties) Locations() ([][]float64, bool) {
	return p.Rows(PropertyLocation)
}

// Groups returns the electrode group of each channel.
func (p *Properties) Groups() ([]int, bool) {
	return p.Ints(PropertyGroup)
}

func (p *Properties) broadcast(v []float64) []float64 {
	if len(v) != 1 || p.numChannels == 1 {
		return v
	}
	out := make([]float64, p.numChannels)
	for i := range out {
		out[i] = v[0]
	}

	return out
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	c := NewProperties(p.numChannels)
	for k, v := range p.values {
		_ = c.Set(k, v)
	}

	return c
}
