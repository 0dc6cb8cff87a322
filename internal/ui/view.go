package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"vidshrink/internal/progress"
	"vidshrink/internal/util/format"
)

func (m Model) viewHeader() string {
	done, total := 0, len(m.jobOrder)
	for _, id := range m.jobOrder {
		if m.jobs[id].done {
			done++
		}
	}
	title := m.styles.Title.Render("vidshrink")
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Files: %d/%d done • q: quit", done, total))
	header := title + "\n" + sub
	if m.opts.Simulated {
		header += "\n" + m.styles.Warning.Render("Simulation mode: outputs are placeholders, no compression is performed")
	}
	return header
}

func (m Model) viewJobs() string {
	var b strings.Builder
	for _, id := range m.jobOrder {
		b.WriteString(m.viewJob(m.jobs[id]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewJob(js *jobState) string {
	stageStyle := m.styles.JobInfo
	switch js.stage {
	case progress.StageQueued:
		stageStyle = m.styles.StageQueued
	case progress.StageRunning:
		stageStyle = m.styles.StageRunning
	case progress.StageDone:
		stageStyle = m.styles.Success
	case progress.StageFailed:
		stageStyle = m.styles.Error
	}

	left := m.styles.JobTitle.Render(truncate(filepath.Base(js.path), 48))
	stage := stageStyle.Render(string(js.stage))

	var right string
	switch {
	case js.done && js.err == nil:
		right = js.bar.ViewAs(1) + " " + m.styles.Success.Render("✓ done")
	case js.err != nil:
		right = m.styles.Error.Render("✗ failed")
	case js.started:
		right = js.bar.ViewAs(progress.Fraction(js.stage)) + " " + m.styles.Spinner.Render(js.spinner.View())
	default:
		right = m.styles.Faint.Render("waiting")
	}

	line1 := fmt.Sprintf("%s  %s", left, stage)
	line2 := m.styles.JobInfo.Render(js.status)
	return m.styles.Box.Render(line1 + "\n" + right + "\n" + line2)
}

func (m Model) viewSummary() string {
	var completed []*jobState
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		if js.done && js.err == nil && js.savedPath != "" {
			completed = append(completed, js)
		}
	}
	if len(completed) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("✓ Completed Files:"))
	b.WriteString("\n")
	for _, js := range completed {
		line := fmt.Sprintf("  • %s (%s smaller)", js.savedPath, format.Percent(js.report.ReductionPercent))
		b.WriteString(m.styles.Success.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
