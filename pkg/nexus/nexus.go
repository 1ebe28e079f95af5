// Package nexus is the public embedding surface for the NexusLang toolchain.
// It exposes lex/parse/interpret/compile as plain functions so cmd/nexus and
// any embedding host can drive the language without reaching into
// internal/*. Interpretation and compilation are peers here, matching
// spec.md: neither is built on top of the other.
package nexus

import (
	"github.com/nexuslang/nexus/internal/ast"
	"github.com/nexuslang/nexus/internal/bytecode"
	nxerrors "github.com/nexuslang/nexus/internal/errors"
	"github.com/nexuslang/nexus/internal/host"
	"github.com/nexuslang/nexus/internal/interp"
	"github.com/nexuslang/nexus/internal/lexer"
	"github.com/nexuslang/nexus/internal/parser"
	"github.com/nexuslang/nexus/internal/source"
)

// Buffer re-exports source.Buffer so callers never need to import
// internal/source directly.
type Buffer = source.Buffer

// NewBuffer wraps source text with the logical file name diagnostics should
// report (a real path, or "<repl>" for an interactive line).
func NewBuffer(name, text string) *Buffer {
	return source.New(name, text)
}

// Parse lexes and parses buf into a Program. The lexer runs to completion
// and collects every LexError it finds; only the first is returned here,
// matching the single-diagnostic-per-phase shape the CLI reports. The
// parser has no error recovery, so a ParseError always means the first
// syntax error in the file. Every returned diagnostic carries buf.Name.
func Parse(buf *Buffer) (*ast.Program, *nxerrors.Diagnostic) {
	toks, lexErrs := lexer.New(buf.Text).ScanTokens()
	if len(lexErrs) > 0 {
		return nil, lexErrs[0].Diagnostic().WithFile(buf.Name)
	}

	prog, perr := parser.New(toks).Parse()
	if perr != nil {
		return nil, perr.Diagnostic().WithFile(buf.Name)
	}
	return prog, nil
}

// Tokens lexes buf and returns every token scanned, along with the first
// lex error encountered (if any) — the `tokens` debug command's backing
// call.
func Tokens(buf *Buffer) ([]lexer.Token, *nxerrors.Diagnostic) {
	toks, lexErrs := lexer.New(buf.Text).ScanTokens()
	if len(lexErrs) > 0 {
		return toks, lexErrs[0].Diagnostic().WithFile(buf.Name)
	}
	return toks, nil
}

// Run interprets buf against the given capability and limits. It returns
// the Interpreter used (so a caller can inspect LastValue for REPL
// last-expression semantics) and the first diagnostic raised at any phase,
// tagged with the phase-appropriate Kind.
func Run(buf *Buffer, capability host.Capability, limits *host.Limits) (*interp.Interpreter, *nxerrors.Diagnostic) {
	prog, diag := Parse(buf)
	if diag != nil {
		return nil, diag
	}

	i := interp.New(capability, limits)
	if rerr := i.Run(prog); rerr != nil {
		return i, rerr.Diagnostic().WithFile(buf.Name)
	}
	return i, nil
}

// RunInEnv interprets a single REPL line against an already-running
// Interpreter, reusing its module environment so `let`s and `fn`s declared
// on one line are visible to the next.
func RunInEnv(i *interp.Interpreter, buf *Buffer) *nxerrors.Diagnostic {
	prog, diag := Parse(buf)
	if diag != nil {
		return diag
	}
	if rerr := i.Run(prog); rerr != nil {
		return rerr.Diagnostic().WithFile(buf.Name)
	}
	return nil
}

// Compile lexes, parses, and lowers buf to a deterministic bytecode Module
// (spec.md §6). No virtual machine consumes this output — compiling and
// interpreting are peers, never one in terms of the other.
func Compile(buf *Buffer) (*bytecode.Module, *nxerrors.Diagnostic) {
	prog, diag := Parse(buf)
	if diag != nil {
		return nil, diag
	}

	mod, err := bytecode.Compile(prog)
	if err != nil {
		if ce, ok := err.(*bytecode.CompileError); ok {
			return nil, nxerrors.New(nxerrors.KindCompile, ce.Message, nxerrors.Position{Line: ce.Pos.Line, Column: ce.Pos.Column}).WithFile(buf.Name)
		}
		return nil, nxerrors.New(nxerrors.KindCompile, err.Error(), nxerrors.Position{}).WithFile(buf.Name)
	}
	return mod, nil
}
