// Kl runs KLambda code: scripts, code given on the command line, and an
// interactive REPL. It can also serve as a language server for KLambda.
package main

import (
	"os"

	"src.kl.sh/pkg/buildinfo"
	"src.kl.sh/pkg/host"
	"src.kl.sh/pkg/lsp"
	"src.kl.sh/pkg/prog"
	"src.kl.sh/pkg/shell"
)

func main() {
	host.Version = buildinfo.FullVersion()
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program, lsp.Program{}, shell.Program{})))
}
