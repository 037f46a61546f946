package main

import (
	"os"

	"github.com/sterling-dev/sterling/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
