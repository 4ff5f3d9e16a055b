package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasm-spectest/script"
)

type reportStyles struct {
	pass    lipgloss.Style
	fail    lipgloss.Style
	detail  lipgloss.Style
	summary lipgloss.Style
}

func newReportStyles(color bool) reportStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return reportStyles{pass: plain, fail: plain, detail: plain, summary: plain}
	}
	return reportStyles{
		pass:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		fail:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		summary: lipgloss.NewStyle().Bold(true),
	}
}

// reporter prints per-script results. Colors are used only on a terminal.
type reporter struct {
	w      io.Writer
	styles reportStyles
}

func newReporter(w io.Writer) *reporter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &reporter{w: w, styles: newReportStyles(color)}
}

func (r *reporter) write(reports []*script.Report) {
	var passed, failed, commands int
	for _, rep := range reports {
		commands += rep.Total
		if rep.OK() {
			passed++
			fmt.Fprintf(r.w, "%s %s  %s\n", r.styles.pass.Render("PASS"), rep.Source, r.counts(rep))
			continue
		}
		failed++
		fmt.Fprintf(r.w, "%s %s  %s\n", r.styles.fail.Render("FAIL"), rep.Source, r.counts(rep))
		fmt.Fprintf(r.w, "    %s\n", r.styles.detail.Render(rep.Err.Error()))
	}

	line := fmt.Sprintf("%d scripts, %d passed, %d failed, %d commands", len(reports), passed, failed, commands)
	fmt.Fprintln(r.w, r.styles.summary.Render(line))
}

func (r *reporter) counts(rep *script.Report) string {
	return r.styles.detail.Render(fmt.Sprintf("%d passed, %d skipped, %d failed (%s)",
		rep.Passed, rep.Skipped, rep.Failed, rep.Duration.Round(time.Millisecond)))
}
