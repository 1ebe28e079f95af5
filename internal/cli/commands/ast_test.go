package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewASTCommand(t *testing.T) {
	cmd := NewASTCommand()
	if cmd.Use != "ast <file>" {
		t.Errorf("expected Use to be 'ast <file>', got %s", cmd.Use)
	}
}

func TestRunAST_DumpsOutline(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hello.nx")
	if err := os.WriteFile(path, []byte(`fn greet(name) {
  return "hi " + name
}
let x = greet("world")`), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	cmd := NewASTCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := runAST(cmd, []string{path}); err != nil {
		t.Fatalf("expected ast dump to succeed, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Fn greet", "Return", "let x", "Call"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestRunAST_SyntaxErrorExitCodeTwo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.nx")
	if err := os.WriteFile(path, []byte(`let x = `), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	cmd := NewASTCommand()
	err := runAST(cmd, []string{path})
	if err == nil {
		t.Fatal("expected a parse error")
	}
	ce, ok := err.(*CLIError)
	if !ok {
		t.Fatalf("expected *CLIError, got %T", err)
	}
	if ce.Code != 2 {
		t.Errorf("expected exit code 2, got %d", ce.Code)
	}
}
