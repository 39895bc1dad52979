package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/ephys/archive"
	"github.com/arloliu/ephys/binaryrec"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify PATH...",
		Short: "Check the checksums of binary folders and archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}

			for _, p := range paths {
				fi, err := os.Stat(p)
				if err != nil {
					return err
				}

				if fi.IsDir() {
					err = binaryrec.Verify(p, binaryrec.WithLogger(slog.Default()))
				} else {
					err = archive.Verify(p, archive.WithLogger(slog.Default()))
				}
				if err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", p)
			}

			return nil
		},
	}
}
