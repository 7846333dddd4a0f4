// Kitcon is the interactive console for the toolkit. It resolves each command
// line against its command handlers, runs unknown commands as programs when
// allowed, and restores the handlers persisted by earlier sessions.
package main

import (
	"os"

	"src.kitcon.sh/pkg/console"
	"src.kitcon.sh/pkg/plugins/alias"
	"src.kitcon.sh/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		console.Program{Register: alias.Register}))
}
