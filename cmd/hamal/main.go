package main

import (
	"fmt"
	"os"

	"github.com/viant/hamal/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if cli.GetExitCode(err) == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
