package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"vidshrink/internal/pipeline"
	"vidshrink/internal/util"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan <files...>",
		Short:         "Show the resolved settings and encoder command without running it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := stateFrom(cmd)
			settings, _, err := settingsFromFlags(cmd.Flags())
			if err != nil {
				return exitFor(err)
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				p, err := pipeline.PlanFor(st.cfg.Encoder, filepath.Base(path), settings)
				if err != nil {
					return exitFor(fmt.Errorf("%s: %w", path, err))
				}
				width := "original"
				if p.Settings.MaxWidth > 0 {
					width = strconv.Itoa(p.Settings.MaxWidth) + "px max"
				}
				fps := "source"
				if p.Settings.MaxFramerate > 0 {
					fps = strconv.Itoa(p.Settings.MaxFramerate) + " max"
				}
				fmt.Fprintf(out, "Plan for %s:\n", path)
				fmt.Fprintln(out, renderTable(
					[]string{"Setting", "Value"},
					[][]string{
						{"Preset", string(settings.Preset)},
						{"CRF", strconv.Itoa(p.Settings.CRF)},
						{"Video codec", p.Settings.VideoCodec},
						{"Audio", "aac " + p.Settings.AudioBitrate},
						{"Width", width},
						{"Frame rate", fps},
						{"Output", filepath.Join(st.cfg.OutDir, p.DownloadName)},
					},
					nil,
				))
				fmt.Fprintf(out, "Command:\n  %s\n\n", util.Quote(p.Argv))
			}
			if st.cfg.Simulate {
				fmt.Fprintln(out, "Simulation mode is on: compress would write placeholders instead of running the encoder.")
			}
			return nil
		},
	}
	bindCompressFlags(cmd.Flags())
	_ = cmd.Flags().MarkHidden("no-ui")
	return cmd
}
