package main

import (
	"os"

	"github.com/bimmerbailey/spell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
