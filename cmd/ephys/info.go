package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/ephys/archive"
	"github.com/arloliu/ephys/binaryrec"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/recording"
)

func newInfoCmd() *cobra.Command {
	var raw rawFlags

	cmd := &cobra.Command{
		Use:   "info [folder | archive | raw files...]",
		Short: "Print the shape of a recording",
		Long: `Print segments, channels, sampling frequency and dtype of a recording.
Raw segment files need --sampling-frequency and --num-channels; file
arguments may be doublestar glob patterns such as "data/**/*.bin".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, kind, err := openInput(args, &raw)
			if err != nil {
				return err
			}
			defer rec.Close()

			return printInfo(cmd, rec, kind)
		},
	}
	raw.register(cmd)

	return cmd
}

func printInfo(cmd *cobra.Command, rec source, kind inputKind) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "format:\t%s\n", kind)
	fmt.Fprintf(w, "channels:\t%d\n", rec.NumChannels())
	fmt.Fprintf(w, "sampling frequency:\t%g Hz\n", rec.SamplingFrequency())
	fmt.Fprintf(w, "dtype:\t%s\n", rec.DType())

	switch r := rec.(type) {
	case *binaryrec.Recording:
		fmt.Fprintf(w, "time axis:\t%s\n", r.TimeAxis())
		fmt.Fprintf(w, "byte order:\t%s\n", endian.Name(r.ByteOrder()))
	case *archive.Recording:
		stats := r.Stats()
		fmt.Fprintf(w, "compression:\t%s\n", r.Compression())
		fmt.Fprintf(w, "chunks:\t%d x %d samples\n", r.NumChunks(), r.ChunkSize())
		fmt.Fprintf(w, "compression ratio:\t%.3f (%.1f%% saved)\n", stats.CompressionRatio(), stats.SpaceSavings())
	}

	fmt.Fprintf(w, "segments:\t%d\n", rec.NumSegments())
	for seg := range rec.NumSegments() {
		n, err := rec.NumSamples(seg)
		if err != nil {
			return err
		}
		d, err := recording.Duration(rec, seg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  segment %d:\t%d samples (%.3f s)\n", seg, n, d)
	}

	if holder, ok := rec.(recording.PropertyHolder); ok {
		if gains, ok := holder.Properties().Gains(); ok && len(gains) > 0 {
			fmt.Fprintf(w, "gain_to_uV[0]:\t%g\n", gains[0])
		}
	}

	return w.Flush()
}
