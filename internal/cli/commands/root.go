package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

// NoColor disables ANSI color in every command's diagnostic output, set by
// the persistent --no-color flag.
var NoColor bool

// NewRootCommand creates the nexus root command: run/compile/repl plus the
// tokens/ast debug helpers (spec.md §6).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nexus",
		Short: "NexusLang interpreter, compiler, and REPL",
		Long: color.CyanString(`NexusLang - an AI-native scripting language

NexusLang programs read like ordinary scripts with a few AI-native
additions baked into the grammar: personality blocks, knowledge queries,
voice say/listen, and optimize_self directives.

Commands:
  run      interpret a .nx source file
  compile  lower a .nx source file to a .nxb bytecode module
  repl     start an interactive session
  tokens   dump the token stream for a .nx file
  ast      dump the parsed syntax tree for a .nx file`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewCompileCommand())
	rootCmd.AddCommand(NewReplCommand())
	rootCmd.AddCommand(NewTokensCommand())
	rootCmd.AddCommand(NewASTCommand())

	return rootCmd
}

// Execute runs the root command, returning the process exit code it should
// terminate with (spec.md §6's exit-code table).
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if ce, ok := err.(*CLIError); ok {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "%v\n", ce.Err)
			return ce.Code
		}
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// CLIError pairs a wrapped error with the exit code Execute should return
// for it, so command RunE functions can signal a specific code without
// calling os.Exit directly (leaving cobra's own error printing to root.go).
type CLIError struct {
	Err  error
	Code int
}

func (e *CLIError) Error() string { return e.Err.Error() }
func (e *CLIError) Unwrap() error { return e.Err }

// exitCodeForKind maps a diagnostic's Kind to the exit code table in
// spec.md §6: 2 for source-level errors (lex/parse/compile), 3 for runtime
// errors, 5 for module-format errors.
func exitCodeForKind(kind nxerrors.Kind) int {
	switch kind {
	case nxerrors.KindLex, nxerrors.KindParse, nxerrors.KindCompile:
		return 2
	case nxerrors.KindModuleVersion, nxerrors.KindModuleSignature:
		return 5
	default:
		return 3
	}
}
