// Package main is the entry point for the frostwall CLI.
package main

import (
	"os"

	"github.com/runger/frostwall/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
