package main

import (
	"os"

	"github.com/velosched/velosched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
