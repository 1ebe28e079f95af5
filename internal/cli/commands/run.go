package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexuslang/nexus/internal/cli/config"
	"github.com/nexuslang/nexus/internal/cli/ui"
	nxerrors "github.com/nexuslang/nexus/internal/errors"
	"github.com/nexuslang/nexus/internal/host"
	"github.com/nexuslang/nexus/internal/interp"
	"github.com/nexuslang/nexus/pkg/nexus"
)

// NewRunCommand creates the run command: lex, parse, and interpret a .nx
// source file against the DefaultHost (or a knowledge-store-backed host,
// when knowledge.dsn is configured).
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Interpret a NexusLang source file",
		Long: `Run lexes, parses, and interprets a .nx file with the tree-walking
interpreter, applying the configured timeout, call-depth, and output-byte
limits (spec.md §5).

Examples:
  nexus run hello.nx
  nexus run --timeout-ms 1000 script.nx`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}

	cmd.Flags().Int("timeout-ms", 0, "Override the configured execution timeout in milliseconds")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return &CLIError{Err: fmt.Errorf("reading %s: %w", path, err), Code: 4}
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		return &CLIError{Err: cfgErr, Code: 1}
	}

	timeout := cfg.Limits.Timeout()
	if override, _ := cmd.Flags().GetInt("timeout-ms"); override > 0 {
		timeout = time.Duration(override) * time.Millisecond
	}
	limits := host.NewLimits(timeout, cfg.Limits.MaxCallDepth)

	capability, capErr := buildCapability(cfg)
	if capErr != nil {
		return &CLIError{Err: capErr, Code: 1}
	}
	if closer, ok := capability.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	capped := host.NewSink(os.Stdout, cfg.Limits.MaxOutputBytes())
	switch c := capability.(type) {
	case *host.DefaultHost:
		c.Sink = capped
	case *host.KnowledgeStoreHost:
		c.Sink = capped
	}

	i, diag := nexus.Run(nexus.NewBuffer(path, string(source)), capability, limits)
	if diag != nil {
		return diagnosticError(diag, i)
	}
	return nil
}

// buildCapability constructs the host.Capability run/repl execute against,
// backed by a SQL knowledge store when knowledge.dsn is configured and
// falling back to the deterministic DefaultHost otherwise.
func buildCapability(cfg *config.Config) (host.Capability, error) {
	if cfg.Knowledge.DSN == "" {
		return host.NewDefaultHost(), nil
	}
	return host.OpenKnowledgeStore(cfg.Knowledge.DSN, cfg.Knowledge.Table)
}

// diagnosticError renders a diagnostic through ui's formatted error helpers,
// attaching "did you mean" suggestions for NameError from the interpreter's
// module scope, and wraps it in a CLIError carrying the right exit code.
// diag's File is expected to already be set (every pkg/nexus entry point
// stamps it from the Buffer it was given).
func diagnosticError(diag *nxerrors.Diagnostic, i *interp.Interpreter) *CLIError {
	code := exitCodeForKind(diag.Kind)

	var msg string
	switch diag.Kind {
	case nxerrors.KindName:
		name := extractQuotedName(diag.Message)
		var suggestions []string
		if i != nil && name != "" {
			suggestions = ui.FindSimilar(name, i.ModuleEnv().Names(), nil)
		}
		msg = ui.NameNotFoundError(name, suggestions, NoColor)
	case nxerrors.KindLex, nxerrors.KindParse, nxerrors.KindCompile:
		msg = ui.CompileError(diag.Format(), NoColor)
	case nxerrors.KindModuleVersion, nxerrors.KindModuleSignature:
		msg = ui.SignatureError(diag.Format(), NoColor)
	default:
		msg = ui.FormatError(ui.ErrorOptions{
			Level:   ui.ErrorLevelError,
			Context: string(diag.Kind),
			Problem: diag.Format(),
			NoColor: NoColor,
		})
	}

	return &CLIError{Err: fmt.Errorf("%s", msg), Code: code}
}

// extractQuotedName pulls the identifier out of a NameError message of the
// form "undefined identifier 'foo'" / "assignment to unbound identifier 'foo'".
func extractQuotedName(msg string) string {
	start := -1
	for i, r := range msg {
		if r == '\'' {
			if start == -1 {
				start = i + 1
			} else {
				return msg[start:i]
			}
		}
	}
	return ""
}
