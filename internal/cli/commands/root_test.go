package commands

import (
	"testing"

	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "nexus" {
		t.Errorf("expected Use to be 'nexus', got %s", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	expectedCommands := []string{"version", "run", "compile", "repl", "tokens", "ast"}
	for _, expected := range expectedCommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected command %s to be registered", expected)
		}
	}
}

func TestExitCodeForKind(t *testing.T) {
	cases := []struct {
		kind nxerrors.Kind
		want int
	}{
		{nxerrors.KindLex, 2},
		{nxerrors.KindParse, 2},
		{nxerrors.KindCompile, 2},
		{nxerrors.KindModuleVersion, 5},
		{nxerrors.KindModuleSignature, 5},
		{nxerrors.KindName, 3},
		{nxerrors.KindType, 3},
		{nxerrors.KindCancelled, 3},
	}
	for _, c := range cases {
		if got := exitCodeForKind(c.kind); got != c.want {
			t.Errorf("exitCodeForKind(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestExecuteReturnsZeroForVersion(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Errorf("expected version command to succeed, got %v", err)
	}
}
