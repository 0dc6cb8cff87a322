package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidshrink/internal/dirs"
	"vidshrink/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose the encoder installation and directories",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := stateFrom(cmd)
			out := cmd.OutOrStdout()

			if cfgFile, err := dirs.ConfigFile(); err == nil {
				fmt.Fprintf(out, "Config:    %s\n", cfgFile)
			}
			tmp := tempBase(st.cfg)
			if tmp == "" {
				tmp = "(system temp)"
			}
			fmt.Fprintf(out, "Temp dir:  %s\n", tmp)
			if st.cfg.Simulate {
				fmt.Fprintln(out, "Mode:      simulate (encoder is not required)")
			}

			path, err := deps.LocateEncoder(st.cfg.Encoder, st.cfg.EncoderPath)
			if err != nil {
				if st.cfg.Simulate {
					fmt.Fprintf(out, "Encoder:   not found (%v)\n", err)
					return nil
				}
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			fmt.Fprintf(out, "Encoder:   %s\n", path)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			version, err := deps.EncoderVersion(ctx, path)
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: fmt.Errorf("%s is not runnable: %w", path, err)}
			}
			fmt.Fprintf(out, "Version:   %s\n", version)
			return nil
		},
	}
}
