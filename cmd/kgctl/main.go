package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/commands"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		if strings.Contains(err.Error(), "unknown command") {
			ui.PrintError("%s", err.Error())
			fmt.Println("\nRun 'kgctl --help' for usage.")
		}
		os.Exit(1)
	}
}
