package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexuslang/nexus/internal/ast"
	"github.com/nexuslang/nexus/internal/cli/ui"
	"github.com/nexuslang/nexus/pkg/nexus"
)

// NewASTCommand creates the ast debug command: dump the parsed syntax tree
// for a .nx file as an indented outline (spec.md §6's debug helpers).
func NewASTCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Dump the parsed syntax tree for a NexusLang source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAST,
	}
}

func runAST(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return &CLIError{Err: fmt.Errorf("reading %s: %w", path, err), Code: 4}
	}

	prog, diag := nexus.Parse(nexus.NewBuffer(path, string(source)))
	if diag != nil {
		msg := ui.CompileError(diag.Format(), NoColor)
		return &CLIError{Err: fmt.Errorf("%s", msg), Code: exitCodeForKind(diag.Kind)}
	}

	out := cmd.OutOrStdout()
	ui.Header(out, fmt.Sprintf("AST: %s", path), NoColor)
	for _, stmt := range prog.Statements {
		dumpNode(out, stmt, 0)
	}
	return nil
}

func dumpNode(w io.Writer, node ast.Node, depth int) {
	pad := strings.Repeat("  ", depth)
	pos := node.Location()

	switch n := node.(type) {
	case *ast.Block:
		fmt.Fprintf(w, "%sBlock (%d:%d)\n", pad, pos.Line, pos.Column)
		for _, s := range n.Statements {
			dumpNode(w, s, depth+1)
		}
	case *ast.LetStmt:
		kind := "let"
		if n.Const {
			kind = "const"
		}
		fmt.Fprintf(w, "%s%s %s (%d:%d)\n", pad, kind, n.Name, pos.Line, pos.Column)
		dumpNode(w, n.Value, depth+1)
	case *ast.AssignStmt:
		fmt.Fprintf(w, "%sAssign (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Target, depth+1)
		dumpNode(w, n.Value, depth+1)
	case *ast.ExprStmt:
		fmt.Fprintf(w, "%sExprStmt (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Expr, depth+1)
	case *ast.IfStmt:
		fmt.Fprintf(w, "%sIf (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Cond, depth+1)
		dumpNode(w, n.Then, depth+1)
		if n.Else != nil {
			dumpNode(w, n.Else, depth+1)
		}
	case *ast.WhileStmt:
		fmt.Fprintf(w, "%sWhile (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Cond, depth+1)
		dumpNode(w, n.Body, depth+1)
	case *ast.ForStmt:
		fmt.Fprintf(w, "%sFor %s (%d:%d)\n", pad, n.Name, pos.Line, pos.Column)
		dumpNode(w, n.Iterable, depth+1)
		dumpNode(w, n.Body, depth+1)
	case *ast.BreakStmt:
		fmt.Fprintf(w, "%sBreak (%d:%d)\n", pad, pos.Line, pos.Column)
	case *ast.ContinueStmt:
		fmt.Fprintf(w, "%sContinue (%d:%d)\n", pad, pos.Line, pos.Column)
	case *ast.ReturnStmt:
		fmt.Fprintf(w, "%sReturn (%d:%d)\n", pad, pos.Line, pos.Column)
		if n.Value != nil {
			dumpNode(w, n.Value, depth+1)
		}
	case *ast.FunctionDecl:
		names := make([]string, len(n.Params))
		for i, p := range n.Params {
			names[i] = p.Name
		}
		fmt.Fprintf(w, "%sFn %s(%s) (%d:%d)\n", pad, n.Name, strings.Join(names, ", "), pos.Line, pos.Column)
		dumpNode(w, n.Body, depth+1)
	case *ast.PersonalityBlock:
		fmt.Fprintf(w, "%sPersonality (%d:%d)\n", pad, pos.Line, pos.Column)
		for _, t := range n.Traits {
			fmt.Fprintf(w, "%s  %s: %v\n", pad, t.Name, t.Value)
		}
	case *ast.VoiceBlock:
		fmt.Fprintf(w, "%sVoice (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Body, depth+1)
	case *ast.SayStmt:
		fmt.Fprintf(w, "%sSay (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Text, depth+1)
	case *ast.OptimizeSelfStmt:
		fmt.Fprintf(w, "%sOptimizeSelf (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Metric, depth+1)
		dumpNode(w, n.Target, depth+1)
	case *ast.IntLit:
		fmt.Fprintf(w, "%sInt %d (%d:%d)\n", pad, n.Value, pos.Line, pos.Column)
	case *ast.FloatLit:
		fmt.Fprintf(w, "%sFloat %v (%d:%d)\n", pad, n.Value, pos.Line, pos.Column)
	case *ast.StringLit:
		fmt.Fprintf(w, "%sString %q (%d:%d)\n", pad, n.Value, pos.Line, pos.Column)
	case *ast.BoolLit:
		fmt.Fprintf(w, "%sBool %v (%d:%d)\n", pad, n.Value, pos.Line, pos.Column)
	case *ast.NullLit:
		fmt.Fprintf(w, "%sNull (%d:%d)\n", pad, pos.Line, pos.Column)
	case *ast.Ident:
		fmt.Fprintf(w, "%sIdent %s (%d:%d)\n", pad, n.Name, pos.Line, pos.Column)
	case *ast.Array:
		fmt.Fprintf(w, "%sArray (%d:%d)\n", pad, pos.Line, pos.Column)
		for _, e := range n.Elements {
			dumpNode(w, e, depth+1)
		}
	case *ast.MappingLit:
		fmt.Fprintf(w, "%sMapping (%d:%d)\n", pad, pos.Line, pos.Column)
		for _, p := range n.Pairs {
			dumpNode(w, p.Key, depth+1)
			dumpNode(w, p.Value, depth+1)
		}
	case *ast.Index:
		fmt.Fprintf(w, "%sIndex (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Target, depth+1)
		dumpNode(w, n.Index, depth+1)
	case *ast.Member:
		fmt.Fprintf(w, "%sMember .%s (%d:%d)\n", pad, n.Name, pos.Line, pos.Column)
		dumpNode(w, n.Target, depth+1)
	case *ast.Binary:
		fmt.Fprintf(w, "%sBinary %s (%d:%d)\n", pad, n.Op, pos.Line, pos.Column)
		dumpNode(w, n.Left, depth+1)
		dumpNode(w, n.Right, depth+1)
	case *ast.Unary:
		fmt.Fprintf(w, "%sUnary %s (%d:%d)\n", pad, n.Op, pos.Line, pos.Column)
		dumpNode(w, n.Operand, depth+1)
	case *ast.Call:
		fmt.Fprintf(w, "%sCall (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Callee, depth+1)
		for _, a := range n.Args {
			dumpNode(w, a, depth+1)
		}
		for _, na := range n.NamedArgs {
			fmt.Fprintf(w, "%s  %s:\n", pad, na.Name)
			dumpNode(w, na.Value, depth+2)
		}
	case *ast.Range:
		fmt.Fprintf(w, "%sRange (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Start, depth+1)
		dumpNode(w, n.End, depth+1)
	case *ast.KnowledgeQuery:
		fmt.Fprintf(w, "%sKnowledgeQuery (%d:%d)\n", pad, pos.Line, pos.Column)
		dumpNode(w, n.Query, depth+1)
		if n.Filters != nil {
			dumpNode(w, n.Filters, depth+1)
		}
	case *ast.ListenExpr:
		fmt.Fprintf(w, "%sListen (%d:%d)\n", pad, pos.Line, pos.Column)
	default:
		fmt.Fprintf(w, "%s%T (%d:%d)\n", pad, node, pos.Line, pos.Column)
	}
}
