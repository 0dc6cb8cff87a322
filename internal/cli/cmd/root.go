package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vidshrink/internal/config"
	"vidshrink/internal/dirs"
	"vidshrink/internal/encoder"
	"vidshrink/internal/logging"
	"vidshrink/internal/model"
	"vidshrink/internal/pipeline"
	"vidshrink/internal/util/deps"
)

const (
	ExitOK          = 0
	ExitCLIError    = 1
	ExitMissingDep  = 2
	ExitValidation  = 3
	ExitEncodeError = 4
	ExitIOError     = 5
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitFor classifies err into an ExitError.
func exitFor(err error) error {
	if err == nil {
		return nil
	}
	var (
		ee  *ExitError
		ve  *encoder.ValidationError
		ue  *deps.UnavailableError
		enc *pipeline.EncodeError
		ioe *pipeline.IOError
	)
	switch {
	case errors.As(err, &ee):
		return ee
	case errors.As(err, &ve):
		return &ExitError{Code: ExitValidation, Err: err}
	case errors.As(err, &ue):
		return &ExitError{Code: ExitMissingDep, Err: err}
	case errors.As(err, &enc):
		return &ExitError{Code: ExitEncodeError, Err: err}
	case errors.As(err, &ioe):
		return &ExitError{Code: ExitIOError, Err: err}
	default:
		return &ExitError{Code: ExitCLIError, Err: err}
	}
}

type ctxKey string

const stateKey ctxKey = "appState"

// appState is loaded once per invocation and shared by subcommands.
type appState struct {
	cfg config.Config
	log *slog.Logger
}

func stateFrom(cmd *cobra.Command) *appState {
	if v, ok := cmd.Context().Value(stateKey).(*appState); ok {
		return v
	}
	return &appState{cfg: config.Default(), log: logging.Discard()}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vidshrink [files...]",
		Short: "Shrink video files with ffmpeg",
		Long: "vidshrink compresses videos by running ffmpeg with a quality preset (or your own CRF), " +
			"an optional resolution and frame-rate cap, and an AAC audio bitrate. " +
			"Results are written as compressed_<name> next to your other outputs, or served over HTTP with 'vidshrink serve'.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: loadState,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCompress(cmd, args, false)
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("out-dir", "o", ".", "Output directory")
	pf.BoolP("verbose", "v", false, "Show encoder commands and output")
	pf.String("encoder", deps.DefaultEncoder, "Encoder binary name looked up on PATH")
	pf.String("encoder-path", "", "Encoder path used when the binary is not on PATH")
	pf.String("temp-dir", "", "Base directory for temporary files (default: system temp)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("config", "", "Config file (default: <config dir>/vidshrink/config.toml)")
	pf.Bool("simulate", false, "Do not run the encoder; write placeholder outputs (demo mode)")

	// `vidshrink <file>` behaves like `vidshrink compress <file>`.
	bindCompressFlags(root.Flags())

	root.AddCommand(newCompressCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func loadState(cmd *cobra.Command, _ []string) error {
	if err := config.Init(cmd.Root()); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	config.BindServeFlags(cmd)
	cfg, err := config.Load()
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("config: %w", err)}
	}
	level := cfg.LogLevel
	if cfg.Verbose && strings.EqualFold(level, "info") {
		level = "debug"
	}
	log, err := logging.New(logging.Options{Level: level, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	cmd.SetContext(context.WithValue(cmd.Context(), stateKey, &appState{cfg: cfg, log: log}))
	return nil
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

func bindCompressFlags(fs *pflag.FlagSet) {
	fs.StringP("preset", "p", "balanced", "Quality preset: high, balanced, small, custom")
	fs.Int("crf", 0, "CRF 15-35, lower is higher quality; overrides the preset")
	fs.StringP("resolution", "r", "original", "Max width: original, 1080p, 720p, 480p or a width in px")
	fs.String("audio-bitrate", "", "AAC bitrate: 192k, 128k, 96k, 64k; overrides the preset")
	fs.String("codec", "h264", "Video codec: h264 or h265")
	fs.Int("max-fps", 0, "Frame-rate cap, never raises the source rate (0 keeps it)")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
}

// settingsFromFlags parses and validates the compression flags.
func settingsFromFlags(fs *pflag.FlagSet) (model.CompressionSettings, model.ResolvedSettings, error) {
	s, err := encoder.ParseSettings(func(key string) string {
		f := fs.Lookup(strings.ReplaceAll(key, "_", "-"))
		if f == nil {
			return ""
		}
		return f.Value.String()
	})
	if err != nil {
		return s, model.ResolvedSettings{}, err
	}
	rs, err := encoder.Resolve(s)
	return s, rs, err
}

// newServiceFactory locates the encoder (unless simulating) and returns a
// constructor for per-job services.
func newServiceFactory(st *appState, verbose bool) (func(opts ...pipeline.Option) *pipeline.Service, string, error) {
	cfg := st.cfg
	var runner encoder.Runner
	binary := cfg.Encoder
	if cfg.Simulate {
		st.log.Warn("simulation mode: the encoder will not run and outputs are placeholders")
		runner = encoder.SimulatedRunner{}
	} else {
		path, err := deps.LocateEncoder(cfg.Encoder, cfg.EncoderPath)
		if err != nil {
			return nil, "", err
		}
		binary = path
		runner = encoder.ExecRunner{Verbose: verbose}
	}
	base := []pipeline.Option{
		pipeline.WithEncoderPath(binary),
		pipeline.WithRunner(runner),
		pipeline.WithTempDir(tempBase(cfg)),
		pipeline.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		pipeline.WithLogger(st.log),
	}
	return func(opts ...pipeline.Option) *pipeline.Service {
		return pipeline.NewService(append(append([]pipeline.Option{}, base...), opts...)...)
	}, binary, nil
}

// tempBase is the configured temp dir, else the per-user cache location.
// An empty result means the system temp dir.
func tempBase(cfg config.Config) string {
	if cfg.TempDir != "" {
		return cfg.TempDir
	}
	d, err := dirs.TempBaseDir()
	if err != nil {
		return ""
	}
	return d
}

func ensureDir(path string) error {
	if path == "" {
		path = "."
	}
	return os.MkdirAll(filepath.Clean(path), 0o755)
}
