// Command docproxy reads and edits cached shared documents through paths.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/docproxy/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
