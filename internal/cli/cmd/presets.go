package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidshrink/internal/encoder"
	"vidshrink/internal/model"
	"vidshrink/internal/util/bitrate"
)

var presetNotes = map[model.QualityPreset]string{
	model.PresetHigh:     "near-transparent, larger files",
	model.PresetBalanced: "default",
	model.PresetSmall:    "smallest files, visible softening",
	model.PresetCustom:   "your --crf / --audio-bitrate, these values when unset",
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "presets",
		Short:         "List quality presets and accepted values",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(model.Presets))
			for _, p := range model.Presets {
				d := encoder.PresetDefaults(p)
				rows = append(rows, []string{string(p), strconv.Itoa(d.CRF), d.AudioBitrate, presetNotes[p]})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Preset", "CRF", "Audio", "Notes"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "CRF range:      %d-%d\n", encoder.MinCRF, encoder.MaxCRF)
			fmt.Fprintf(out, "Audio bitrates: %s\n", strings.Join(bitrate.AudioTokens, ", "))
			fmt.Fprintln(out, "Resolutions:    original, 1080p (1920), 720p (1280), 480p (854), or a width in px")
			fmt.Fprintln(out, "Codecs:         h264 (libx264), h265 (libx265)")
			return nil
		},
	}
}
