// Package errors provides the shared diagnostic shape used by every phase of
// the NexusLang toolchain (lexer, parser, interpreter, bytecode compiler,
// module reader). Each phase defines its own error type carrying the fields
// spec'd for that phase, and converts it to a Diagnostic for rendering —
// either a single human-readable line for the CLI, or JSON for tooling.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is one of the error taxonomy entries from the toolchain's error table.
type Kind string

const (
	KindLex             Kind = "LexError"
	KindParse           Kind = "ParseError"
	KindName            Kind = "NameError"
	KindType            Kind = "TypeError"
	KindArity           Kind = "ArityError"
	KindArith           Kind = "ArithError"
	KindIndex           Kind = "IndexError"
	KindKey             Kind = "KeyError"
	KindTraitRange      Kind = "TraitRangeError"
	KindCancelled       Kind = "CancelledError"
	KindStackOverflow   Kind = "StackOverflowError"
	KindModuleVersion   Kind = "ModuleVersionError"
	KindModuleSignature Kind = "ModuleSignatureError"
	KindCompile         Kind = "CompileError"
)

// Position is a 1-indexed source location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String renders "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// CallSite is one frame of a runtime traceback: the position of a call
// expression that was still executing when the error occurred.
type CallSite struct {
	Position Position `json:"position"`
	Name     string   `json:"name,omitempty"`
}

// Diagnostic is the common, renderable shape every toolchain error reduces
// to: a kind, a message, a position, and (for runtime errors) a traceback of
// the most recent call-site positions.
type Diagnostic struct {
	Kind     Kind       `json:"kind"`
	Message  string     `json:"message"`
	File     string     `json:"file,omitempty"`
	Position Position   `json:"position"`
	Trace    []CallSite `json:"trace,omitempty"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Format()
}

// Format renders the single-line CLI diagnostic: "<kind> at
// <file>:<line>:<col>: <message>", followed by up to five of the most recent
// call-site positions.
func (d *Diagnostic) Format() string {
	file := d.File
	if file == "" {
		file = "<source>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s:%s: %s", d.Kind, file, d.Position, d.Message)

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

// ToJSON renders the diagnostic as indented JSON, for tooling/LLM consumers
// that want structured fields instead of a formatted string.
func (d *Diagnostic) ToJSON() (string, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WithFile returns a copy of the diagnostic with the file name set.
func (d *Diagnostic) WithFile(file string) *Diagnostic {
	cp := *d
	cp.File = file
	return &cp
}

// WithTrace returns a copy of the diagnostic with a call-site trace attached.
func (d *Diagnostic) WithTrace(trace []CallSite) *Diagnostic {
	cp := *d
	cp.Trace = trace
	return &cp
}

// New builds a Diagnostic from its core fields.
func New(kind Kind, message string, pos Position) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Position: pos}
}
