package main

import (
	"os"

	"github.com/rulesmith/rulesmith/cmd/rulesmith/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
