package main

import (
	"os"

	"github.com/tcollab-dev/tcollab/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
