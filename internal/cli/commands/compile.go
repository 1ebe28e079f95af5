package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/nexuslang/nexus/internal/bytecode"
	"github.com/nexuslang/nexus/internal/cli/config"
	"github.com/nexuslang/nexus/internal/cli/ui"
	"github.com/nexuslang/nexus/internal/host"
	"github.com/nexuslang/nexus/pkg/nexus"
)

// benchmarkIterations is the fixed parse-loop size --benchmark times
// (spec.md §4.5: "time N=100 parse iterations and report milliseconds per
// iteration").
const benchmarkIterations = 100

// NewCompileCommand creates the compile command: lower a .nx file to a
// .nxb bytecode module (spec.md §6), optionally caching and signing it.
func NewCompileCommand() *cobra.Command {
	var (
		output    string
		benchmark bool
		sign      bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a NexusLang source file to a .nxb module",
		Long: `Compile lexes, parses, and lowers a .nx file to the deterministic .nxb
bytecode wire format. Compiling the same source twice always produces
byte-identical output (spec.md's determinism property).

Examples:
  nexus compile hello.nx
  nexus compile -o build/hello.nxb hello.nx
  nexus compile --sign --benchmark hello.nx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, output, benchmark, sign, force)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the .nxb module (default: <file> with .nxb extension)")
	cmd.Flags().BoolVar(&benchmark, "benchmark", false, "Time 100 parse iterations and report milliseconds per iteration")
	cmd.Flags().BoolVar(&sign, "sign", false, "Sign the module with the configured signing key")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file without confirmation")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, output string, benchmark, sign, force bool) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return &CLIError{Err: fmt.Errorf("reading %s: %w", path, err), Code: 4}
	}

	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + ".nxb"
	}

	if !force {
		if _, err := os.Stat(output); err == nil {
			overwrite := false
			prompt := &survey.Confirm{
				Message: fmt.Sprintf("%s already exists. Overwrite?", output),
				Default: false,
			}
			if askErr := survey.AskOne(prompt, &overwrite); askErr != nil {
				return &CLIError{Err: askErr, Code: 1}
			}
			if !overwrite {
				return &CLIError{Err: fmt.Errorf("compile cancelled: %s already exists", output), Code: 1}
			}
		}
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		return &CLIError{Err: cfgErr, Code: 1}
	}

	cache := bytecode.NewCache(cfg.Cache.Address)
	defer cache.Close()
	ctx := context.Background()
	key := bytecode.Key(string(source))

	moduleBytes, hit := cache.Get(ctx, key)
	if !hit {
		mod, diag := nexus.Compile(nexus.NewBuffer(path, string(source)))
		if diag != nil {
			msg := ui.CompileError(diag.Format(), NoColor)
			return &CLIError{Err: fmt.Errorf("%s", msg), Code: exitCodeForKind(diag.Kind)}
		}

		moduleBytes, err = mod.Encode()
		if err != nil {
			return &CLIError{Err: fmt.Errorf("encoding module: %w", err), Code: 5}
		}
		if err := cache.Put(ctx, key, moduleBytes); err != nil {
			msg := ui.CacheError(err.Error(), NoColor)
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
	}

	if sign {
		signingKey := []byte(cfg.Signing.Key)
		if len(signingKey) == 0 {
			return &CLIError{Err: fmt.Errorf("cannot sign: signing.key is not configured"), Code: 1}
		}
		signature, signErr := bytecode.Sign(moduleBytes, signingKey)
		if signErr != nil {
			msg := ui.SignatureError(signErr.Error(), NoColor)
			return &CLIError{Err: fmt.Errorf("%s", msg), Code: 5}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Module signature: %s\n", signature)
	}

	if err := os.WriteFile(output, moduleBytes, 0644); err != nil {
		return &CLIError{Err: fmt.Errorf("writing %s: %w", output, err), Code: 4}
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Compiled %s -> %s", path, output), NoColor)

	sourceSize := len(source)
	compiledSize := len(moduleBytes)
	ratio := float64(sourceSize) / float64(compiledSize)
	fmt.Fprintf(cmd.OutOrStdout(), "source: %d bytes, compiled: %d bytes, ratio: %.2fx, estimated speedup: %.2fx\n",
		sourceSize, compiledSize, ratio, ratio)

	if benchmark {
		h := host.NewDefaultHost()
		startMS := h.Now()
		for n := 0; n < benchmarkIterations; n++ {
			if _, diag := nexus.Parse(nexus.NewBuffer(path, string(source))); diag != nil {
				break
			}
		}
		elapsedMS := h.Now() - startMS
		msPerIteration := float64(elapsedMS) / float64(benchmarkIterations)
		fmt.Fprintf(cmd.OutOrStdout(), "benchmark: %d parse iterations, %.3f ms/iteration\n", benchmarkIterations, msPerIteration)
	}
	return nil
}
