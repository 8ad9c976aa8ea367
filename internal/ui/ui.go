// Package ui holds the terminal styling shared by the ki commands.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// RenderPass styles s as a success marker.
func RenderPass(s string) string {
	return passStyle.Render(s)
}

// RenderWarn styles s as a warning marker.
func RenderWarn(s string) string {
	return warnStyle.Render(s)
}

// RenderFail styles s as a failure marker.
func RenderFail(s string) string {
	return failStyle.Render(s)
}

// RenderMuted styles s as de-emphasized detail.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// RenderAccent styles s as a highlight.
func RenderAccent(s string) string {
	return accentStyle.Render(s)
}

// Progress is a single-line counter. It only draws when the writer is a
// terminal, so piped output stays clean.
type Progress struct {
	w     io.Writer
	label string
	tty   bool
	drawn bool
}

// NewProgress returns a counter writing to w under the given label.
func NewProgress(w io.Writer, label string) *Progress {
	p := &Progress{w: w, label: label}
	if f, ok := w.(*os.File); ok {
		p.tty = term.IsTerminal(int(f.Fd()))
	}
	return p
}

// Update redraws the counter at n of total.
func (p *Progress) Update(n, total int) {
	if !p.tty {
		return
	}
	fmt.Fprintf(p.w, "\r%s %d/%d", p.label, n, total)
	p.drawn = true
}

// Done terminates the counter line if anything was drawn.
func (p *Progress) Done() {
	if !p.tty || !p.drawn {
		return
	}
	fmt.Fprint(p.w, "\n")
}
