package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"vidshrink/internal/model"
	"vidshrink/internal/pipeline"
	"vidshrink/internal/progress"
	"vidshrink/internal/util/format"
)

// Options configures the TUI.
type Options struct {
	Settings model.CompressionSettings
	OutDir   string
	// NewService builds the pipeline for one job, wired to the given reporter.
	NewService func(rep progress.Reporter, jobID string) *pipeline.Service
	Simulated  bool
}

type startNextMsg struct{}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	files    []string
	opts     Options
	jobOrder []string
	jobs     map[string]*jobState
	next     int
	running  bool

	width, height int
	styles        Styles

	// reporter events are funneled through here into tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, files []string, opts Options) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	jobs := make(map[string]*jobState, len(files))
	order := make([]string, 0, len(files))
	for i, f := range files {
		id := toID(i)
		js := newJobState(f, sty)
		jobs[id] = &js
		order = append(order, id)
	}

	return Model{
		ctx:      c,
		cancel:   cancel,
		files:    files,
		opts:     opts,
		jobs:     jobs,
		jobOrder: order,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 64),
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		cmds = append(cmds, m.jobs[id].spinner.Tick)
	}
	cmds = append(cmds, m.listenEventsCmd(), startNext)
	return tea.Batch(cmds...)
}

func startNext() tea.Msg { return startNextMsg{} }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case startNextMsg:
		// One compression at a time.
		if m.running {
			return m, nil
		}
		if m.next >= len(m.files) {
			return m, tea.Quit
		}
		id := m.jobOrder[m.next]
		path := m.files[m.next]
		m.next++
		m.running = true
		if js := m.jobs[id]; js != nil {
			js.started = true
		}
		return m, m.runJobCmd(id, path)

	case jobUpdateMsg:
		u := msg.U
		if js, ok := m.jobs[u.JobID]; ok {
			js.stage = u.Stage
			js.status = u.Message
		}

	case jobResultMsg:
		r := msg.R
		if js, ok := m.jobs[r.JobID]; ok && !js.done {
			js.done = true
			js.err = r.Err
			if r.Err == nil {
				js.stage = progress.StageDone
				js.report = r.Report
				js.savedPath = pipeline.SavedPath(m.opts.OutDir, r.Report)
				js.status = doneStatus(r.Report)
			} else {
				js.stage = progress.StageFailed
				js.status = failStatus(r.Err)
			}
			m.running = false
			return m, tea.Batch(m.listenEventsCmd(), startNext)
		}

	case allDoneMsg:
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		var c tea.Cmd
		js.spinner, c = js.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	switch msg.(type) {
	case jobUpdateMsg, jobResultMsg:
		cmds = append(cmds, m.listenEventsCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	summary := m.viewSummary()
	if summary != "" {
		return m.viewHeader() + "\n\n" + m.viewJobs() + "\n" + summary
	}
	return m.viewHeader() + "\n\n" + m.viewJobs()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// runJobCmd compresses one file. Progress and the final result arrive
// through the reporter; failures before the pipeline starts are reported here.
func (m Model) runJobCmd(jobID, path string) tea.Cmd {
	return func() tea.Msg {
		rep := teaReporter{ctx: m.ctx, ch: m.eventCh}
		up, closer, err := pipeline.OpenUpload(path)
		if err != nil {
			rep.Result(progress.Result{JobID: jobID, Err: err})
			return nil
		}
		defer closer.Close()

		svc := m.opts.NewService(rep, jobID)
		_, _ = svc.Compress(m.ctx, up, m.opts.Settings, pipeline.SaveTo(m.opts.OutDir))
		return nil
	}
}

type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// terminal updates must not be dropped
	if u.Stage.Terminal() {
		r.send(jobUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.send(jobResultMsg{R: res})
}

// send blocks until the UI takes msg or the program is shutting down.
func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.ctx.Done():
	}
}

func doneStatus(rep model.Report) string {
	s := fmt.Sprintf("Saved: %s (%s -> %s, %s smaller)",
		rep.DownloadName,
		format.Megabytes(rep.OriginalBytes),
		format.Megabytes(rep.CompressedBytes),
		format.Percent(rep.ReductionPercent))
	if rep.Simulated {
		s += " [simulated]"
	}
	return s
}

func failStatus(err error) string {
	var ee *pipeline.EncodeError
	if errors.As(err, &ee) {
		if line := lastLine(ee.Stderr); line != "" {
			return err.Error() + ": " + line
		}
	}
	return err.Error()
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func toID(i int) string {
	return "job-" + strconv.Itoa(i)
}
