package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arloliu/ephys/binaryrec"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/format"
)

// folderFlags describe a binary folder output.
type folderFlags struct {
	out         string
	dtype       string
	timeAxis    string
	byteOrder   string
	chunkSize   int
	concurrency int
	overwrite   bool
}

func (f *folderFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.out, "out", "o", "", "Output folder")
	flags.StringVar(&f.dtype, "out-dtype", "", "Output dtype, default is the input dtype")
	flags.StringVar(&f.timeAxis, "out-time-axis", "time-major", "Output layout (time-major|channel-major)")
	flags.StringVar(&f.byteOrder, "out-byte-order", "native", "Output byte order (little|big|native)")
	flags.IntVar(&f.chunkSize, "chunk-size", 0, "Samples per chunk, default keeps chunks near 1MiB")
	flags.IntVar(&f.concurrency, "concurrency", binaryrec.DefaultConcurrency, "Segments written at once")
	flags.BoolVar(&f.overwrite, "overwrite", false, "Replace existing output files")
	_ = cmd.MarkFlagRequired("out")
}

func (f *folderFlags) options() ([]binaryrec.Option, error) {
	axis, err := format.ParseTimeAxis(f.timeAxis)
	if err != nil {
		return nil, err
	}
	engine, err := endian.ParseByteOrder(f.byteOrder)
	if err != nil {
		return nil, err
	}

	opts := []binaryrec.Option{
		binaryrec.WithTimeAxis(axis),
		binaryrec.WithByteOrder(engine),
		binaryrec.WithConcurrency(f.concurrency),
		binaryrec.WithOverwrite(f.overwrite),
		binaryrec.WithLogger(slog.Default()),
	}
	if f.dtype != "" {
		dtype, err := format.ParseDType(f.dtype)
		if err != nil {
			return nil, err
		}
		opts = append(opts, binaryrec.WithDType(dtype))
	}
	if f.chunkSize > 0 {
		opts = append(opts, binaryrec.WithChunkSize(f.chunkSize))
	}

	return opts, nil
}

func newConvertCmd() *cobra.Command {
	var (
		raw rawFlags
		out folderFlags
	)

	cmd := &cobra.Command{
		Use:   "convert [folder | archive | raw files...] --out DIR",
		Short: "Rewrite a recording as a binary folder",
		Long: `Rewrite a recording as a binary folder (binary.yaml plus one raw file per
segment), optionally changing dtype, time axis and byte order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := out.options()
			if err != nil {
				return err
			}

			rec, _, err := openInput(args, &raw)
			if err != nil {
				return err
			}
			defer rec.Close()

			info, err := binaryrec.WriteFolder(cmd.Context(), rec, out.out, opts...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d segments to %s (%s, %s)\n",
				len(info.Segments), out.out, info.DType, info.TimeAxis)

			return nil
		},
	}
	raw.register(cmd)
	out.register(cmd)

	return cmd
}
