package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"vidshrink/internal/model"
	"vidshrink/internal/util"
	"vidshrink/internal/util/deps"
)

// Runner executes an encoder argv synchronously. A returned error means the
// process could not be started at all; a process that ran and failed is
// reported through EncodeResult.
type Runner interface {
	Run(ctx context.Context, argv []string) (model.EncodeResult, error)
}

// ExecRunner runs the encoder as a local subprocess.
type ExecRunner struct {
	Cmd util.CmdRunner // defaults to util.NewDefaultRunner()
	// Verbose echoes the command line and encoder output to stderr.
	Verbose bool
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, argv []string) (model.EncodeResult, error) {
	if len(argv) < 2 {
		return model.EncodeResult{}, errors.New("argv must contain the encoder binary and an output path")
	}
	cmd := r.Cmd
	if cmd == nil {
		cmd = util.NewDefaultRunner()
	}
	spec := util.CmdSpec{Path: argv[0], Args: argv[1:]}
	if r.Verbose {
		spec.Echo = os.Stderr
	}
	res, runErr := cmd.Run(ctx, spec)
	if runErr != nil {
		// a killed process looks like an exit; report the cancellation instead
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.EncodeResult{}, ctxErr
		}
	}
	var exitErr *exec.ExitError
	if runErr != nil && res.Code == -1 && !errors.As(runErr, &exitErr) {
		return model.EncodeResult{}, &deps.UnavailableError{
			Name:     argv[0],
			Searched: []string{argv[0]},
			Err:      runErr,
		}
	}
	return resultFromExit(res.Code, string(res.Stderr), argv[len(argv)-1]), nil
}

// resultFromExit classifies a finished process. A zero exit with a missing or
// empty output file still counts as a failure.
func resultFromExit(code int, stderr, outputPath string) model.EncodeResult {
	if code != 0 {
		return model.EncodeResult{Outcome: model.OutcomeFailure, ExitCode: code, Stderr: stderr}
	}
	size, err := util.FileSize(outputPath)
	if err != nil || size == 0 {
		return model.EncodeResult{Outcome: model.OutcomeFailure, ExitCode: 0, Stderr: stderr}
	}
	return model.EncodeResult{
		Outcome:     model.OutcomeSuccess,
		OutputPath:  outputPath,
		OutputBytes: size,
		Stderr:      stderr,
	}
}

// SimulatedPayload is written in place of real encoder output.
const SimulatedPayload = "vidshrink simulated output: no compression was performed\n"

// SimulatedRunner never starts a process. It writes SimulatedPayload to the
// output path and marks the result Simulated. It exists for demos on
// machines without an encoder and must be selected explicitly.
type SimulatedRunner struct{}

// Run implements Runner.
func (SimulatedRunner) Run(ctx context.Context, argv []string) (model.EncodeResult, error) {
	if len(argv) < 2 {
		return model.EncodeResult{}, errors.New("argv must contain the encoder binary and an output path")
	}
	if err := ctx.Err(); err != nil {
		return model.EncodeResult{}, err
	}
	out := argv[len(argv)-1]
	if err := os.WriteFile(out, []byte(SimulatedPayload), 0o644); err != nil {
		return model.EncodeResult{}, fmt.Errorf("write simulated output: %w", err)
	}
	return model.EncodeResult{
		Outcome:     model.OutcomeSuccess,
		OutputPath:  out,
		OutputBytes: int64(len(SimulatedPayload)),
		Simulated:   true,
	}, nil
}
