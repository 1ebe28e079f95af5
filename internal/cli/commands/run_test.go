package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	if cmd.Use != "run <file>" {
		t.Errorf("expected Use to be 'run <file>', got %s", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if cmd.Flags().Lookup("timeout-ms") == nil {
		t.Error("expected --timeout-ms flag to be registered")
	}
}

func TestRunRun_MissingFile(t *testing.T) {
	cmd := NewRunCommand()
	err := runRun(cmd, []string{"does-not-exist.nx"})
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
	ce, ok := err.(*CLIError)
	if !ok {
		t.Fatalf("expected *CLIError, got %T", err)
	}
	if ce.Code != 4 {
		t.Errorf("expected exit code 4 for an I/O error, got %d", ce.Code)
	}
}

func TestRunRun_PrintProgramSucceeds(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	path := filepath.Join(tmpDir, "hello.nx")
	if err := os.WriteFile(path, []byte(`print("hi")`), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	cmd := NewRunCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := runRun(cmd, []string{path}); err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}
}

func TestRunRun_NameErrorExitCode(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	path := filepath.Join(tmpDir, "bad.nx")
	if err := os.WriteFile(path, []byte(`print(undefined_name)`), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	cmd := NewRunCommand()
	err := runRun(cmd, []string{path})
	if err == nil {
		t.Fatal("expected an error for an undefined identifier")
	}
	ce, ok := err.(*CLIError)
	if !ok {
		t.Fatalf("expected *CLIError, got %T", err)
	}
	if ce.Code != 3 {
		t.Errorf("expected exit code 3 for a runtime error, got %d", ce.Code)
	}
}

func TestExtractQuotedName(t *testing.T) {
	got := extractQuotedName("undefined identifier 'foo'")
	if got != "foo" {
		t.Errorf("expected 'foo', got %q", got)
	}
}

func TestDiagnosticErrorMapsCompileKindsToExitCodeTwo(t *testing.T) {
	diag := nxerrors.New(nxerrors.KindParse, "expected expression", nxerrors.Position{Line: 1, Column: 1}).WithFile("test.nx")
	ce := diagnosticError(diag, nil)
	if ce.Code != 2 {
		t.Errorf("expected exit code 2 for a ParseError, got %d", ce.Code)
	}
}
