package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nexuslang/nexus/internal/cli/config"
	"github.com/nexuslang/nexus/internal/host"
	"github.com/nexuslang/nexus/internal/interp"
	"github.com/nexuslang/nexus/pkg/nexus"
)

// NewReplCommand creates the repl command: an interactive session that
// reuses one Interpreter's module environment across lines, so a `let` or
// `fn` on one line is visible on the next, and prints the last evaluated
// expression's value after each line (spec.md's REPL last-value semantics).
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive NexusLang session",
		Long: `Repl reads one line at a time, interprets it against a running
Interpreter whose module scope persists across lines, and prints the value
of the last expression evaluated on that line.`,
		RunE: runRepl,
	}
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return &CLIError{Err: err, Code: 1}
	}

	capability, capErr := buildCapability(cfg)
	if capErr != nil {
		return &CLIError{Err: capErr, Code: 1}
	}
	if closer, ok := capability.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	limits := host.NewLimits(cfg.Limits.Timeout(), cfg.Limits.MaxCallDepth)
	i := interp.New(capability, limits)

	prompt := color.New(color.FgCyan, color.Bold)
	if NoColor {
		prompt.DisableColor()
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for {
		prompt.Fprint(out, "nexus> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return nil
		}
		line := in.Text()
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		replLine(i, line, out)
	}
}

// replLine evaluates one line and prints either its diagnostic or the
// resulting last value, never returning an error — a REPL line failing does
// not end the session.
func replLine(i *interp.Interpreter, line string, out io.Writer) {
	diag := nexus.RunInEnv(i, nexus.NewBuffer("<repl>", line))
	if diag != nil {
		ce := diagnosticError(diag, i)
		fmt.Fprintln(out, ce.Err)
		return
	}
	fmt.Fprintln(out, interp.Render(i.LastValue()))
}
