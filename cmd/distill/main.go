// Package main provides the entry point for the distill CLI.
package main

import (
	"fmt"
	"os"

	"github.com/silverl/distill/cmd/distill/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
