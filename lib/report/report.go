// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// MatchLine is printed after a successful comparison.
const MatchLine = "Match!"

// Printer writes report lines to one writer. Write errors are sticky:
// the first one is kept and returned by [Printer.Err], and later lines
// are dropped.
type Printer struct {
	out io.Writer
	err error

	warning lipgloss.Style
	side    lipgloss.Style
	path    lipgloss.Style
	detail  lipgloss.Style
	match   lipgloss.Style
}

// New returns a Printer writing to out. With color false the output is
// plain ASCII regardless of the environment.
func New(out io.Writer, color bool) *Printer {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	// SetColorProfile pins the profile; the renderer would otherwise
	// re-detect from the environment.
	renderer := lipgloss.NewRenderer(out, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return &Printer{
		out:     out,
		warning: renderer.NewStyle().Foreground(lipgloss.Color("214")),
		side:    renderer.NewStyle().Foreground(lipgloss.Color("39")),
		path:    renderer.NewStyle().Bold(true),
		detail:  renderer.NewStyle().Foreground(lipgloss.Color("203")),
		match:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	}
}

// Warning prints a non-fatal notice.
func (p *Printer) Warning(format string, args ...any) {
	p.line(p.warning.Render("warning: " + fmt.Sprintf(format, args...)))
}

// OnlyIn reports a path present in one tree and absent from the other.
// side is "left" or "right".
func (p *Printer) OnlyIn(side, path string) {
	p.line(p.side.Render("only in "+side+":") + " " + p.path.Render(path))
}

// Mismatch reports one discrepancy at path.
func (p *Printer) Mismatch(path, detail string) {
	p.line(p.path.Render(path) + ": " + p.detail.Render(detail))
}

// Summary reports the number of discrepancies found.
func (p *Printer) Summary(count int) {
	noun := "discrepancies"
	if count == 1 {
		noun = "discrepancy"
	}
	p.line(p.detail.Render(fmt.Sprintf("%d %s", count, noun)))
}

// Match prints [MatchLine].
func (p *Printer) Match() {
	p.line(p.match.Render(MatchLine))
}

// Err returns the first write error, if any.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) line(text string) {
	if p.err != nil {
		return
	}
	if _, err := io.WriteString(p.out, text+"\n"); err != nil {
		p.err = fmt.Errorf("writing report: %w", err)
	}
}
