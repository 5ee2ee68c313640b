// Package report prints build progress for humans.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gookit/color"
)

// TotalLabel is the synthetic name used for the whole-build duration line.
const TotalLabel = "TOTAL Update Time"

var (
	startStyle = color.New(color.OpBold)
	endStyle   = color.New(color.FgGreen)
)

// Printer writes module start/end lines.
type Printer struct {
	out     io.Writer
	colored bool
}

// NewPrinter returns a printer writing to out. Colors are used only when
// colored is true and the terminal supports them.
func NewPrinter(out io.Writer, colored bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, colored: colored && color.SupportColor()}
}

// PrintStart announces that a module is starting.
func (p *Printer) PrintStart(name string) {
	p.line(startStyle, "\nRunning module: "+name)
}

// PrintEnd reports the elapsed time between start and end under name.
func (p *Printer) PrintEnd(name string, start, end time.Time) {
	p.line(endStyle, fmt.Sprintf("%s: %s", name, FormatDuration(end.Sub(start))))
}

func (p *Printer) line(style color.Style, text string) {
	if p.colored {
		text = style.Sprint(text)
	}
	_, _ = fmt.Fprintln(p.out, text)
}

// FormatDuration renders d rounded to milliseconds. Negative durations
// (clock adjustments) are reported as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Millisecond).String()
}
