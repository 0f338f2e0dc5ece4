// Package main is the entry point for the duplines CLI.
package main

import (
	"os"

	"github.com/leeovery/duplines/internal/cli"
)

func main() {
	app := &cli.App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Cwd:    ".",
	}

	// Resolve working directory
	if wd, err := os.Getwd(); err == nil {
		app.Cwd = wd
	}

	os.Exit(app.Run(os.Args))
}
