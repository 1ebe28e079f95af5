package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nexuslang/nexus/internal/host"
	"github.com/nexuslang/nexus/internal/interp"
)

func TestNewReplCommand(t *testing.T) {
	cmd := NewReplCommand()
	if cmd.Use != "repl" {
		t.Errorf("expected Use to be 'repl', got %s", cmd.Use)
	}
}

func TestReplLine_PrintsExpressionValue(t *testing.T) {
	i := interp.New(host.NewDefaultHost(), nil)
	var buf bytes.Buffer

	replLine(i, "1 + 2", &buf)

	if got := strings.TrimSpace(buf.String()); got != "3" {
		t.Errorf("expected '3', got %q", got)
	}
}

func TestReplLine_PersistsBindingsAcrossLines(t *testing.T) {
	i := interp.New(host.NewDefaultHost(), nil)
	var buf bytes.Buffer

	replLine(i, "let x = 10", &buf)
	buf.Reset()
	replLine(i, "x + 5", &buf)

	if got := strings.TrimSpace(buf.String()); got != "15" {
		t.Errorf("expected '15', got %q", got)
	}
}

func TestReplLine_ReportsDiagnosticWithoutPanicking(t *testing.T) {
	i := interp.New(host.NewDefaultHost(), nil)
	var buf bytes.Buffer

	replLine(i, "undefined_name", &buf)

	if !strings.Contains(buf.String(), "undefined_name") {
		t.Errorf("expected the error output to mention the undefined identifier, got %q", buf.String())
	}
}

func TestRunRepl_ExitsOnEOF(t *testing.T) {
	cmd := NewReplCommand()
	cmd.SetIn(strings.NewReader(""))
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runRepl(cmd, []string{}); err != nil {
		t.Errorf("expected repl to exit cleanly on EOF, got %v", err)
	}
}
