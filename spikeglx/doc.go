// Package spikeglx exposes SpikeGLX acquisitions as recordings.
//
// SpikeGLX writes one folder per run holding several streams: the
// action-potential band of each probe ("imec0.ap"), its low-frequency band
// ("imec0.lf") and the NI-DAQ auxiliary stream ("nidq"). Parsing the binary
// and .meta files is left to a RawIO collaborator; this package selects a
// stream, then derives per-channel hardware metadata from it:
//
//   - the probe geometry, read from the stream's .meta file through a
//     probe.Reader (the lf stream borrows the geometry of its ap sibling),
//     attached grouped by shank when the probe has shanks;
//   - the inter_sample_shift of each channel, the fraction of a sample
//     period its multiplexed ADC lags behind the start of a conversion cycle.
//
// Both steps are skipped for nidq streams and when the trailing sync
// channel is loaded, since the sync channel has no place on the probe.
package spikeglx
