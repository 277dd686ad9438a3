// Package main is the entry point for the packtrace CLI.
package main

import (
	"os"

	"github.com/packtrace/packtrace/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
