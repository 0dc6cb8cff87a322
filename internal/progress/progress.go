package progress

import "vidshrink/internal/model"

// Stage is a coarse checkpoint of a compression request. No real progress
// signal is read from the encoder.
type Stage string

const (
	StageQueued  Stage = "queued"
	StageRunning Stage = "running"
	StageDone    Stage = "done"
	StageFailed  Stage = "failed"
)

// Fraction maps a stage to a 0..1 value for progress bars.
func Fraction(s Stage) float64 {
	switch s {
	case StageRunning:
		return 0.5
	case StageDone, StageFailed:
		return 1
	default:
		return 0
	}
}

// Terminal reports whether no further updates follow s.
func (s Stage) Terminal() bool { return s == StageDone || s == StageFailed }

// Update conveys a stage change for a job.
type Update struct {
	JobID   string
	Stage   Stage
	Message string // short human-friendly status line
}

// Result is emitted once per job when it completes or fails.
type Result struct {
	JobID  string
	Report model.Report // zero on failure
	Err    error        // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Result(r Result)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Result(Result) {}
