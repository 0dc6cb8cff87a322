package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// CmdRunner runs a subprocess. The default implementation is Run; tests
// inject fakes.
type CmdRunner interface {
	Run(ctx context.Context, spec CmdSpec) (CmdResult, error)
}

type defaultRunner struct{}

// NewDefaultRunner returns a CmdRunner backed by os/exec.
func NewDefaultRunner() CmdRunner { return defaultRunner{} }

func (defaultRunner) Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	return Run(ctx, spec)
}

// CmdSpec describes a subprocess to run.
type CmdSpec struct {
	Path string   // Binary path
	Args []string // Arguments
	// Echo, when non-nil, receives the quoted command line followed by the
	// process output as it is produced.
	Echo io.Writer
}

// CmdResult contains captured output and exit status. Code is -1 when the
// process never ran to completion (not found, not executable, killed).
type CmdResult struct {
	Stdout []byte
	Stderr []byte
	Code   int
	Err    error
}

// Run executes the command and waits for it. Stdout and stderr are captured
// byte for byte. On non-zero exit it returns an error describing the exit
// code while still populating CmdResult.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if spec.Echo != nil {
		fmt.Fprintf(spec.Echo, "+ %s\n", shellQuote(spec.Path, spec.Args))
		// a shared writer keeps the interleaving of both streams intact
		echo := &lockedWriter{w: spec.Echo}
		cmd.Stdout = io.MultiWriter(&stdoutBuf, echo)
		cmd.Stderr = io.MultiWriter(&stderrBuf, echo)
	}

	waitErr := cmd.Run()

	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	res := CmdResult{
		Stdout: stdoutBuf.Bytes(),
		Stderr: stderrBuf.Bytes(),
		Code:   code,
		Err:    waitErr,
	}
	if waitErr != nil {
		return res, fmt.Errorf("command failed (exit %d): %w", code, waitErr)
	}
	return res, nil
}

// Quote renders argv (binary first) as a copy-pasteable shell command.
func Quote(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return shellQuote(argv[0], argv[1:])
}

// shellQuote returns a printable shell-like command string for logging.
func shellQuote(path string, args []string) string {
	b := &strings.Builder{}
	b.WriteString(quote(path))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote(a))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	// Simple quoting: wrap in single quotes and escape existing single quotes.
	if strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!") {
		return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
	}
	return s
}

// lockedWriter serializes writes from the stdout and stderr copiers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
