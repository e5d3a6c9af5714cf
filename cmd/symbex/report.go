package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"symbex/internal/diag"
)

// diagPrinter writes diagnostics one per line with a colored severity.
type diagPrinter struct {
	out   io.Writer
	color bool
	notes bool
	sev   map[diag.Severity]*color.Color
	code  *color.Color
	dim   *color.Color
}

func newDiagPrinter(out io.Writer, useColor, notes bool) *diagPrinter {
	p := &diagPrinter{
		out:   out,
		color: useColor,
		notes: notes,
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan),
		},
		code: color.New(color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range append([]*color.Color{p.code, p.dim}, p.sev[diag.SevError], p.sev[diag.SevWarning], p.sev[diag.SevInfo]) {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *diagPrinter) print(diags []diag.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	if !p.color {
		fmt.Fprintln(p.out, diag.FormatShort(diags, p.notes))
		return
	}
	for _, d := range diags {
		fmt.Fprintf(p.out, "%s %s %s %s\n", p.sev[d.Severity].Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Primary, d.Message)
		if !p.notes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(p.out, "  %s %s %s\n", p.dim.Sprint("note"), n.Loc, n.Msg)
		}
	}
}
