package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nexuslang/nexus/internal/cli/ui"
	"github.com/nexuslang/nexus/pkg/nexus"
)

// NewTokensCommand creates the tokens debug command: dump the token stream
// a .nx file scans to, one row per token (spec.md §6's debug helpers).
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream for a NexusLang source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokens,
	}
}

func runTokens(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return &CLIError{Err: fmt.Errorf("reading %s: %w", path, err), Code: 4}
	}

	toks, diag := nexus.Tokens(nexus.NewBuffer(path, string(source)))
	out := cmd.OutOrStdout()

	table := ui.NewTable(out, []string{"LINE:COL", "TYPE", "LEXEME", "LITERAL"}, &ui.TableOptions{NoColor: NoColor})
	for _, tok := range toks {
		literal := ""
		if tok.Literal != nil {
			literal = fmt.Sprintf("%v", tok.Literal)
		}
		table.AddRow(strconv.Itoa(tok.Line)+":"+strconv.Itoa(tok.Column), tok.Type.String(), tok.Lexeme, literal)
	}
	table.Render()

	if diag != nil {
		msg := ui.CompileError(diag.Format(), NoColor)
		return &CLIError{Err: fmt.Errorf("%s", msg), Code: exitCodeForKind(diag.Kind)}
	}
	return nil
}
