package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arloliu/ephys/neuropixels"
)

func newShiftsCmd() *cobra.Command {
	var (
		numChannels int
		probeType   string
	)

	cmd := &cobra.Command{
		Use:   "shifts --num-channels N --probe-type TYPE",
		Short: "Print the inter-sample shift of each Neuropixels channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := neuropixels.ProbeTypeCode(probeType); !ok {
				slog.Debug("unrecognized probe type", "imDatPrb_type", probeType)
			}
			perADC := neuropixels.ChannelsPerADC(probeType)

			shifts, err := neuropixels.SampleShifts(numChannels, perADC)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, s := range shifts {
				fmt.Fprintf(out, "%d\t%.6f\n", i, s)
			}

			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&numChannels, "num-channels", 384, "Number of channels")
	flags.StringVar(&probeType, "probe-type", "0", "imDatPrb_type of the probe")

	return cmd
}
