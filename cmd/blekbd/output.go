package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// printer writes command output, colored only when it goes to a terminal.
type printer struct {
	w      io.Writer
	header *color.Color
	label  *color.Color
	value  *color.Color
	dim    *color.Color
}

func newPrinter(w io.Writer) *printer {
	p := &printer{
		w:      w,
		header: color.New(color.FgCyan, color.Bold),
		label:  color.New(color.FgYellow),
		value:  color.New(color.FgGreen),
		dim:    color.New(color.Faint),
	}
	enabled := isTerminal(w) && os.Getenv("NO_COLOR") == ""
	for _, c := range []*color.Color{p.header, p.label, p.value, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(args ...any) {
	fmt.Fprintln(p.w, args...)
}
