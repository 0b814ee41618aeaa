// Command audioctl learns, applies and reads vendor audio enhancement
// switches.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/audioctl/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
