// Command nexus is the NexusLang CLI entry point: run, compile, repl, and
// the tokens/ast debug helpers, all wired through internal/cli/commands.
package main

import (
	"os"

	"github.com/nexuslang/nexus/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
