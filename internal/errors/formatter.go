package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// FormatColor renders a Diagnostic as the plain Format() line with the kind
// highlighted, so piping to a file or
// a non-tty still produces the exact spec'd line (color.NoColor is honored
// automatically by fatih/color when stdout isn't a terminal).
func FormatColor(d *Diagnostic) string {
	kind := color.New(color.FgRed, color.Bold).Sprint(string(d.Kind))
	file := d.File
	if file == "" {
		file = "<source>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s:%s: %s", kind, file, d.Position, d.Message)

	trace := d.Trace
	if len(trace) > 5 {
		trace = trace[:5]
	}
	for _, site := range trace {
		if site.Name != "" {
			fmt.Fprintf(&b, "\n    at %s (%s)", site.Name, site.Position)
		} else {
			fmt.Fprintf(&b, "\n    at %s", site.Position)
		}
	}
	return b.String()
}

// FormatList renders a sequence of diagnostics with FormatColor, separated by
// blank lines. The CLI commands do not call it: they report one diagnostic
// per phase.
func FormatList(diags []*Diagnostic) string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = FormatColor(d)
	}
	return strings.Join(lines, "\n\n")
}
