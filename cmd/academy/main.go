// Package main is the entry point for the DevLearn Academy server and CLI.
// It only dispatches to internal/cli. NO business logic belongs here.
package main

import (
	"os"

	"github.com/MRamiBalles/DevLearnAcademy/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
