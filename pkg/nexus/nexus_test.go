package nexus

import (
	"strings"
	"testing"

	nxerrors "github.com/nexuslang/nexus/internal/errors"
	"github.com/nexuslang/nexus/internal/host"
)

func TestParseReturnsProgramForValidSource(t *testing.T) {
	prog, diag := Parse(NewBuffer("main.nx", `let x = 1 + 2`))
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
}

func TestParseLexErrorIsTaggedWithFileName(t *testing.T) {
	_, diag := Parse(NewBuffer("bad.nx", `let x = "unterminated`))
	if diag == nil {
		t.Fatal("expected a lex diagnostic")
	}
	if diag.Kind != nxerrors.KindLex {
		t.Errorf("Kind = %v, want %v", diag.Kind, nxerrors.KindLex)
	}
	if diag.File != "bad.nx" {
		t.Errorf("File = %q, want %q", diag.File, "bad.nx")
	}
}

func TestParseSyntaxErrorIsTaggedWithFileName(t *testing.T) {
	_, diag := Parse(NewBuffer("bad.nx", `let x = `))
	if diag == nil {
		t.Fatal("expected a parse diagnostic")
	}
	if diag.Kind != nxerrors.KindParse {
		t.Errorf("Kind = %v, want %v", diag.Kind, nxerrors.KindParse)
	}
	if diag.File != "bad.nx" {
		t.Errorf("File = %q, want %q", diag.File, "bad.nx")
	}
}

func TestTokensReturnsScannedTokensForValidSource(t *testing.T) {
	toks, diag := Tokens(NewBuffer("main.nx", `let x = 1`))
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if len(toks) == 0 {
		t.Fatal("expected at least one scanned token")
	}
}

func TestRunExecutesProgramAgainstCapability(t *testing.T) {
	var out strings.Builder
	h := &host.DefaultHost{Sink: host.NewSink(&out, 0)}

	i, diag := Run(NewBuffer("main.nx", `print(21 + 21)`), h, nil)
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if got := strings.TrimSpace(out.String()); got != "42" {
		t.Errorf("got %q, want %q", got, "42")
	}
	if i == nil {
		t.Fatal("expected a non-nil interpreter")
	}
}

func TestRunRuntimeErrorIsTaggedWithFileName(t *testing.T) {
	h := host.NewDefaultHost()
	_, diag := Run(NewBuffer("boom.nx", `print(undefined_name)`), h, nil)
	if diag == nil {
		t.Fatal("expected a runtime diagnostic")
	}
	if diag.File != "boom.nx" {
		t.Errorf("File = %q, want %q", diag.File, "boom.nx")
	}
}

func TestRunParseErrorShortCircuitsBeforeExecution(t *testing.T) {
	h := host.NewDefaultHost()
	i, diag := Run(NewBuffer("boom.nx", `let x = `), h, nil)
	if diag == nil {
		t.Fatal("expected a diagnostic")
	}
	if diag.Kind != nxerrors.KindParse {
		t.Errorf("Kind = %v, want %v", diag.Kind, nxerrors.KindParse)
	}
	if i != nil {
		t.Error("expected a nil interpreter when parsing fails before execution starts")
	}
}

func TestRunInEnvReusesModuleEnvironmentAcrossCalls(t *testing.T) {
	var out strings.Builder
	h := &host.DefaultHost{Sink: host.NewSink(&out, 0)}

	i, diag := Run(NewBuffer("<repl>", `let x = 10`), h, nil)
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}

	if diag := RunInEnv(i, NewBuffer("<repl>", `print(x + 1)`)); diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if got := strings.TrimSpace(out.String()); got != "11" {
		t.Errorf("got %q, want %q", got, "11")
	}
}

func TestRunInEnvRuntimeErrorIsTaggedWithFileName(t *testing.T) {
	h := host.NewDefaultHost()
	i, diag := Run(NewBuffer("<repl>", `let x = 1`), h, nil)
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}

	diag = RunInEnv(i, NewBuffer("<repl>", `print(nope)`))
	if diag == nil {
		t.Fatal("expected a diagnostic")
	}
	if diag.File != "<repl>" {
		t.Errorf("File = %q, want %q", diag.File, "<repl>")
	}
}

func TestCompileProducesModuleForValidSource(t *testing.T) {
	mod, diag := Compile(NewBuffer("main.nx", `let x = 1 + 2`))
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if mod == nil {
		t.Fatal("expected a non-nil module")
	}
}

func TestCompileSyntaxErrorShortCircuitsBeforeLowering(t *testing.T) {
	_, diag := Compile(NewBuffer("bad.nx", `let x = `))
	if diag == nil {
		t.Fatal("expected a diagnostic")
	}
	if diag.Kind != nxerrors.KindParse {
		t.Errorf("Kind = %v, want %v", diag.Kind, nxerrors.KindParse)
	}
	if diag.File != "bad.nx" {
		t.Errorf("File = %q, want %q", diag.File, "bad.nx")
	}
}

func TestNewBufferWrapsNameAndText(t *testing.T) {
	buf := NewBuffer("foo.nx", "let x = 1")
	if buf.Name != "foo.nx" || buf.Text != "let x = 1" {
		t.Errorf("got Buffer{%q, %q}, want Buffer{%q, %q}", buf.Name, buf.Text, "foo.nx", "let x = 1")
	}
}
