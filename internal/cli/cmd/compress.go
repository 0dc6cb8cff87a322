package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vidshrink/internal/model"
	"vidshrink/internal/pipeline"
	"vidshrink/internal/progress"
	"vidshrink/internal/ui"
	"vidshrink/internal/util/format"
)

func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "compress <files...>",
		Short:         "Compress one or more video files, one at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd, args, false)
		},
	}
	bindCompressFlags(cmd.Flags())
	return cmd
}

func runCompress(cmd *cobra.Command, files []string, forceTUI bool) error {
	st := stateFrom(cmd)
	settings, _, err := settingsFromFlags(cmd.Flags())
	if err != nil {
		return exitFor(err)
	}

	noUI, _ := cmd.Flags().GetBool("no-ui")
	useTUI := forceTUI || (!noUI && isTerminal())

	// The encoder streams its own output in verbose mode, which would corrupt the TUI.
	factory, _, err := newServiceFactory(st, st.cfg.Verbose && !useTUI)
	if err != nil {
		return exitFor(err)
	}
	if err := ensureDir(st.cfg.OutDir); err != nil {
		return &ExitError{Code: ExitIOError, Err: fmt.Errorf("failed to create output dir: %v", err)}
	}

	if useTUI {
		err := ui.Run(cmd.Context(), files, ui.Options{
			Settings:  settings,
			OutDir:    st.cfg.OutDir,
			Simulated: st.cfg.Simulate,
			NewService: func(rep progress.Reporter, jobID string) *pipeline.Service {
				return factory(pipeline.WithReporter(rep), pipeline.WithJobID(jobID))
			},
		})
		if err != nil {
			printEncoderStderr(cmd.ErrOrStderr(), err)
		}
		return exitFor(err)
	}

	svc := factory()
	out := cmd.OutOrStdout()
	var reports []model.Report
	for _, path := range files {
		rep, err := compressOne(cmd.Context(), svc, path, st.cfg.OutDir, settings)
		if err != nil {
			printSummary(out, reports, st.cfg.OutDir)
			printEncoderStderr(cmd.ErrOrStderr(), err)
			return exitFor(fmt.Errorf("%s: %w", path, err))
		}
		fmt.Fprintf(out, "Saved: %s (%s -> %s, %s smaller)%s\n",
			pipeline.SavedPath(st.cfg.OutDir, rep),
			format.Megabytes(rep.OriginalBytes),
			format.Megabytes(rep.CompressedBytes),
			format.Percent(rep.ReductionPercent),
			simulatedLabel(rep))
		reports = append(reports, rep)
	}
	if len(reports) > 1 {
		printSummary(out, reports, st.cfg.OutDir)
	}
	return nil
}

func compressOne(ctx context.Context, svc *pipeline.Service, path, outDir string, settings model.CompressionSettings) (model.Report, error) {
	up, closer, err := pipeline.OpenUpload(path)
	if err != nil {
		return model.Report{}, &pipeline.IOError{Op: "open", Path: path, Err: err}
	}
	defer closer.Close()
	return svc.Compress(ctx, up, settings, pipeline.SaveTo(outDir))
}

func printSummary(w io.Writer, reports []model.Report, outDir string) {
	if len(reports) == 0 {
		return
	}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.OriginalName,
			format.Megabytes(r.OriginalBytes),
			format.Megabytes(r.CompressedBytes),
			format.Percent(r.ReductionPercent),
			filepath.Base(pipeline.SavedPath(outDir, r)) + simulatedLabel(r),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"File", "Original", "Compressed", "Reduction", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
}

// printEncoderStderr surfaces the encoder's diagnostics verbatim.
func printEncoderStderr(w io.Writer, err error) {
	var ee *pipeline.EncodeError
	if errors.As(err, &ee) && ee.Stderr != "" {
		fmt.Fprintln(w, "encoder output:")
		fmt.Fprint(w, ee.Stderr)
	}
}

func simulatedLabel(r model.Report) string {
	if r.Simulated {
		return " [simulated]"
	}
	return ""
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
