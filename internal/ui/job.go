package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"vidshrink/internal/model"
	"vidshrink/internal/progress"
)

type jobState struct {
	path   string
	stage  progress.Stage
	status string
	err    error
	done   bool

	report    model.Report
	savedPath string

	spinner spinner.Model
	bar     bubblesprogress.Model

	started bool
}

func newJobState(path string, styles Styles) jobState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return jobState{
		path:    path,
		stage:   progress.StageQueued,
		status:  "Queued",
		spinner: sp,
		bar:     bar,
	}
}
