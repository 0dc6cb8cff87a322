// Package pipeline runs one compression request end to end: materialize the
// upload, encode it, hand the result to the caller and clean up.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"vidshrink/internal/encoder"
	"vidshrink/internal/logging"
	"vidshrink/internal/metrics"
	"vidshrink/internal/model"
	"vidshrink/internal/progress"
	"vidshrink/internal/util"
	"vidshrink/internal/util/deps"
	"vidshrink/internal/util/format"
	"vidshrink/internal/util/media"
)

const (
	// DefaultMaxUploadBytes is the largest upload accepted (1 GB).
	DefaultMaxUploadBytes int64 = 1 << 30
	// LargeUploadBytes triggers a warning that encoding may take a while.
	LargeUploadBytes int64 = 500 << 20
)

// Deliver receives the finished report and the open output file. The file is
// closed and removed after Deliver returns.
type Deliver func(rep model.Report, output *os.File) error

// Service runs compressions one at a time.
type Service struct {
	encoderPath string
	runner      encoder.Runner
	tempDir     string
	maxUpload   int64
	reporter    progress.Reporter
	log         *slog.Logger
	jobID       string

	slot chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithEncoderPath sets the encoder binary placed at argv[0].
func WithEncoderPath(p string) Option {
	return func(s *Service) {
		s.encoderPath = p
	}
}

// WithRunner injects the runner strategy (exec, simulated or a test fake).
func WithRunner(r encoder.Runner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithTempDir sets the base directory for per-request workdirs.
func WithTempDir(dir string) Option {
	return func(s *Service) {
		s.tempDir = dir
	}
}

// WithMaxUploadBytes caps the materialized upload size.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		s.maxUpload = n
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithJobID fixes the job ID used in reports and progress events. Without it
// every call gets a fresh UUID.
func WithJobID(id string) Option {
	return func(s *Service) {
		s.jobID = id
	}
}

// NewService constructs a Service, filling in defaults for missing options.
func NewService(opts ...Option) *Service {
	s := &Service{slot: make(chan struct{}, 1)}
	for _, o := range opts {
		o(s)
	}
	if s.encoderPath == "" {
		s.encoderPath = deps.DefaultEncoder
	}
	if s.runner == nil {
		s.runner = encoder.ExecRunner{}
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Compress runs the full request. Validation happens before anything touches
// disk; once a workdir exists it is removed on every return path.
func (s *Service) Compress(ctx context.Context, up model.Upload, settings model.CompressionSettings, deliver Deliver) (rep model.Report, err error) {
	jobID := s.jobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	log := s.log.With("job", jobID, "file", up.Name)
	started := time.Now()

	defer func() {
		outcome := Outcome(err)
		if err == nil && rep.Simulated {
			outcome = metrics.OutcomeSimulated
		}
		metrics.CompressionsTotal.WithLabelValues(outcome).Inc()
		if err != nil {
			log.Warn("compression failed", "outcome", outcome, "error", err)
			s.reporter.Update(progress.Update{JobID: jobID, Stage: progress.StageFailed, Message: err.Error()})
			s.reporter.Result(progress.Result{JobID: jobID, Err: err})
			return
		}
		s.reporter.Update(progress.Update{
			JobID:   jobID,
			Stage:   progress.StageDone,
			Message: fmt.Sprintf("%s -> %s (%s smaller)", format.Megabytes(rep.OriginalBytes), format.Megabytes(rep.CompressedBytes), format.Percent(rep.ReductionPercent)),
		})
		s.reporter.Result(progress.Result{JobID: jobID, Report: rep})
	}()

	ext, err := media.InputExt(up.Name)
	if err != nil {
		return rep, &encoder.ValidationError{Field: "file", Value: up.Name, Reason: err.Error()}
	}
	if up.Size > s.maxUpload {
		return rep, tooLarge(up.Name, s.maxUpload)
	}
	rs, err := encoder.Resolve(settings)
	if err != nil {
		return rep, err
	}

	s.reporter.Update(progress.Update{JobID: jobID, Stage: progress.StageQueued, Message: "waiting for encoder"})
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return rep, ctx.Err()
	}
	defer func() { <-s.slot }()

	workdir, err := util.MakeTempWorkdir(s.tempDir, "job")
	if err != nil {
		return rep, &IOError{Op: "create workdir", Path: s.tempDir, Err: err}
	}
	defer s.cleanup(log, workdir)

	inPath, n, err := util.WriteTempFile(workdir, "input-*"+ext, io.LimitReader(up.Body, s.maxUpload+1))
	if err != nil {
		return rep, &IOError{Op: "write input", Path: workdir, Err: err}
	}
	if n > s.maxUpload {
		return rep, tooLarge(up.Name, s.maxUpload)
	}
	if n == 0 {
		return rep, &encoder.ValidationError{Field: "file", Value: up.Name, Reason: "upload is empty"}
	}
	if n > LargeUploadBytes {
		log.Warn("large upload, encoding may take a while", "size", format.HumanizeBytes(n))
	}
	outPath, err := util.ReserveTempPath(workdir, "output-*"+media.OutputExt)
	if err != nil {
		return rep, &IOError{Op: "reserve output", Path: workdir, Err: err}
	}

	argv := encoder.BuildArgs(s.encoderPath, rs, inPath, outPath)
	log.Debug("running encoder", "argv", util.Quote(argv))
	s.reporter.Update(progress.Update{JobID: jobID, Stage: progress.StageRunning, Message: "encoding"})

	metrics.CompressionsInFlight.Inc()
	encStart := time.Now()
	res, err := s.runner.Run(ctx, argv)
	metrics.CompressionDuration.Observe(time.Since(encStart).Seconds())
	metrics.CompressionsInFlight.Dec()
	if err != nil {
		var ue *deps.UnavailableError
		if errors.As(err, &ue) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return rep, err
		}
		return rep, &IOError{Op: "run encoder", Err: err}
	}
	if !res.OK() {
		return rep, encodeError(res)
	}

	rep = model.Report{
		JobID:            jobID,
		OriginalName:     up.Name,
		DownloadName:     media.DownloadName(up.Name),
		OriginalBytes:    n,
		CompressedBytes:  res.OutputBytes,
		ReductionPercent: format.ReductionPercent(n, res.OutputBytes),
		Settings:         rs,
		Argv:             argv,
		Simulated:        res.Simulated,
		Elapsed:          time.Since(started),
	}
	metrics.InputBytesTotal.Add(float64(n))
	metrics.OutputBytesTotal.Add(float64(res.OutputBytes))
	log.Info("compression finished",
		"original", format.HumanizeBytes(n),
		"compressed", format.HumanizeBytes(res.OutputBytes),
		"reduction", format.Percent(rep.ReductionPercent),
		"simulated", rep.Simulated)

	if deliver == nil {
		return rep, nil
	}
	f, err := os.Open(res.OutputPath)
	if err != nil {
		return model.Report{}, &IOError{Op: "open output", Path: res.OutputPath, Err: err}
	}
	defer f.Close()
	if err := deliver(rep, f); err != nil {
		return model.Report{}, &IOError{Op: "deliver", Path: res.OutputPath, Err: err}
	}
	return rep, nil
}

func (s *Service) cleanup(log *slog.Logger, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		metrics.CleanupFailuresTotal.Inc()
		log.Warn("failed to remove temp workdir", "dir", dir, "error", err)
	}
}

func encodeError(res model.EncodeResult) *EncodeError {
	reason := fmt.Sprintf("exit status %d", res.ExitCode)
	if res.ExitCode == 0 {
		reason = "no output produced"
	}
	return &EncodeError{ExitCode: res.ExitCode, Stderr: res.Stderr, Reason: reason}
}

func tooLarge(name string, limit int64) error {
	return &encoder.ValidationError{
		Field:  "file",
		Value:  name,
		Reason: "larger than the " + format.HumanizeBytes(limit) + " upload limit",
	}
}
