// Package main is the entry point for the safeflow CLI.
package main

import (
	"os"

	"github.com/dipjyotimetia/SafeFlow-sub002/cmd/safeflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
