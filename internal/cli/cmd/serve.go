package cmd

import (
	"github.com/spf13/cobra"

	"vidshrink/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the upload form and compression API over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := stateFrom(cmd)
			factory, binary, err := newServiceFactory(st, false)
			if err != nil {
				return exitFor(err)
			}
			st.log.Info("encoder ready", "path", binary, "simulated", st.cfg.Simulate)
			srv := server.New(server.Options{
				Service:         factory(),
				EncoderName:     st.cfg.Encoder,
				EncoderOverride: st.cfg.EncoderPath,
				Simulated:       st.cfg.Simulate,
				MaxUploadBytes:  st.cfg.MaxUploadBytes(),
				Logger:          st.log,
			})
			if err := srv.Run(cmd.Context(), st.cfg.Listen); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
	}
	cmd.Flags().String("listen", ":8080", "Address to listen on")
	cmd.Flags().Int("max-upload-mb", 1024, "Largest accepted upload in MB")
	return cmd
}
