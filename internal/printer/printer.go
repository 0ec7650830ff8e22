// Package printer provides user-facing CLI output helpers, separate from
// the structured log stream.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/colonyops/writegate/internal/core/styles"
)

// Printer writes status lines to a terminal. Styling is disabled when the
// target is not a TTY so piped output stays plain.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a Printer for the given writer.
func New(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, color: color}
}

// Printf writes a plain line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Successf writes a success line.
func (p *Printer) Successf(format string, args ...any) {
	p.line("✔", styles.TextSuccessStyle, format, args...)
}

// Infof writes an informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.line("●", styles.TextMutedStyle, format, args...)
}

// Warningf writes a warning line.
func (p *Printer) Warningf(format string, args ...any) {
	p.line("●", styles.TextWarningStyle, format, args...)
}

// Errorf writes an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line("✘", styles.TextErrorStyle, format, args...)
}

func (p *Printer) line(icon string, style lipgloss.Style, format string, args ...any) {
	if p.color {
		icon = style.Render(icon)
	}
	_, _ = fmt.Fprintf(p.w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

type ctxKey struct{}

// WithCtx stores a Printer in the context.
func WithCtx(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the Printer from the context, defaulting to stdout.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}
