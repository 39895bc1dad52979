package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arloliu/ephys/archive"
	"github.com/arloliu/ephys/binaryrec"
	"github.com/arloliu/ephys/format"
)

func newPackCmd() *cobra.Command {
	var (
		raw         rawFlags
		out         string
		compression string
		chunkSize   int
		concurrency int
		overwrite   bool
	)

	cmd := &cobra.Command{
		Use:   "pack [folder | raw files...] --out FILE",
		Short: "Store a recording in a compressed archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := format.ParseCompression(compression)
			if err != nil {
				return err
			}

			rec, _, err := openInput(args, &raw)
			if err != nil {
				return err
			}
			defer rec.Close()

			res, err := archive.Write(cmd.Context(), rec, out,
				archive.WithCompression(codec),
				archive.WithChunkSize(chunkSize),
				archive.WithConcurrency(concurrency),
				archive.WithOverwrite(overwrite),
				archive.WithLogger(slog.Default()),
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d chunks, %s, ratio %.3f\n",
				out, res.NumChunks, codec, res.Stats.CompressionRatio())

			return nil
		},
	}
	raw.register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "", "Output archive file")
	flags.StringVar(&compression, "compression", "zstd", "Chunk codec (none|zstd|s2|lz4)")
	flags.IntVar(&chunkSize, "chunk-size", archive.DefaultChunkSize, "Samples per chunk")
	flags.IntVar(&concurrency, "concurrency", archive.DefaultConcurrency, "Chunks compressed at once")
	flags.BoolVar(&overwrite, "overwrite", false, "Replace an existing archive")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newUnpackCmd() *cobra.Command {
	var out folderFlags

	cmd := &cobra.Command{
		Use:   "unpack ARCHIVE --out DIR",
		Short: "Extract an archive into a binary folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := out.options()
			if err != nil {
				return err
			}

			rec, err := archive.Open(args[0], archive.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			defer rec.Close()

			info, err := binaryrec.WriteFolder(cmd.Context(), rec, out.out, opts...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d segments to %s\n", len(info.Segments), out.out)

			return nil
		},
	}
	out.register(cmd)

	return cmd
}
