// Package neuropixels holds the ADC multiplexing constants of Neuropixels
// probes.
//
// Neuropixels probes digitize several channels with one ADC, cycling through
// them within a sampling period. Channels sharing an ADC are therefore
// sampled at slightly different times; the fraction of a sampling period by
// which each channel lags is its inter-sample shift.
package neuropixels

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/ephys/errs"
)

const (
	// ProbeTypeNP2 is the imDatPrb_type code of single-shank 2.0 probes,
	// whose ADCs each multiplex 16 channels.
	ProbeTypeNP2 = 2

	// ChannelsPerADCNP2 is the multiplexing factor of 2.0 probes.
	ChannelsPerADCNP2 = 16
	// ChannelsPerADCDefault applies to every other probe type, including
	// 1.0 probes and unrecognized codes.
	ChannelsPerADCDefault = 12
)

// ChannelsPerADC returns the number of channels one ADC multiplexes for the
// given probe type code. The code may come from metadata as an integer,
// float or string; anything that is not exactly 2 yields 12.
func ChannelsPerADC(probeType any) int {
	code, ok := ProbeTypeCode(probeType)
	if ok && code == ProbeTypeNP2 {
		return ChannelsPerADCNP2
	}

	return ChannelsPerADCDefault
}

// ProbeTypeCode normalizes an imDatPrb_type value to an integer. It reports
// false when the value is missing or not an integral number.
func ProbeTypeCode(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		return floatCode(float64(t))
	case float64:
		return floatCode(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatCode(f)
		}

		return 0, false
	default:
		return 0, false
	}
}

func floatCode(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}

	return int(f), true
}

// ADCGroups returns how many ADCs serve numChannels channels.
func ADCGroups(numChannels, channelsPerADC int) int {
	if numChannels <= 0 || channelsPerADC <= 0 {
		return 0
	}

	return (numChannels + channelsPerADC - 1) / channelsPerADC
}

// SampleShifts returns the inter-sample shift of every channel: channel i is
// the (i mod channelsPerADC)-th channel converted in its ADC cycle, so it
// lags the cycle start by (i mod channelsPerADC)/channelsPerADC of a sample.
// Every value lies in [0, 1).
func SampleShifts(numChannels, channelsPerADC int) ([]float64, error) {
	if numChannels < 0 {
		return nil, fmt.Errorf("%w: negative channel count %d", errs.ErrInvalidArgument, numChannels)
	}
	if channelsPerADC <= 0 {
		return nil, fmt.Errorf("%w: channels per ADC must be positive, got %d", errs.ErrInvalidArgument, channelsPerADC)
	}

	shifts := make([]float64, numChannels)
	for i := range shifts {
		shifts[i] = float64(i%channelsPerADC) / float64(channelsPerADC)
	}

	return shifts, nil
}
