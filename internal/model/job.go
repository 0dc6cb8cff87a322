package model

import (
	"io"
	"time"
)

// EncodeJob is one encoder invocation. Argv[0] is the encoder binary and the
// last element is OutputPath.
type EncodeJob struct {
	InputPath  string
	OutputPath string
	Settings   ResolvedSettings
	Argv       []string
}

// Outcome tags an EncodeResult.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// EncodeResult is what a runner reports back. OutputPath and OutputBytes are
// set on success; ExitCode and Stderr on failure.
type EncodeResult struct {
	Outcome     Outcome
	OutputPath  string
	OutputBytes int64
	ExitCode    int
	Stderr      string
	Simulated   bool // placeholder output, no real compression happened
}

// OK reports whether the encoder produced a usable output.
func (r EncodeResult) OK() bool { return r.Outcome == OutcomeSuccess }

// Upload is the input artifact: the original file name plus its bytes.
type Upload struct {
	Name string
	Size int64 // may be 0 if unknown; the materialized size is used instead
	Body io.Reader
}

// Report is shown to the user after a successful compression.
type Report struct {
	JobID            string
	OriginalName     string
	DownloadName     string
	OriginalBytes    int64
	CompressedBytes  int64
	ReductionPercent float64
	Settings         ResolvedSettings
	Argv             []string
	Simulated        bool
	Elapsed          time.Duration
}
