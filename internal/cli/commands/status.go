package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

// statusCmd is the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show the configured server's readiness",
	Example: `  # Check the configured server
  $ kgctl status`,
	RunE: runStatus,
}

func init() {
	statusCmd.SilenceUsage = true
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ready, err := apiClient.Readiness(ctx)
	if err != nil {
		ui.PrintError("server not reachable: %v", err)
		return fmt.Errorf("status check failed")
	}

	ui.PrintSuccess("server %s is %s", cfg.Server, ready.Status)
	if len(ready.Models) > 0 {
		ui.PrintBold("MODELS")
		for _, model := range ready.Models {
			marker := " "
			if model == cfg.Model {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, model)
		}
	}
	if ready.Verification {
		ui.PrintInfo("human verification is required for streaming requests")
	} else {
		ui.PrintInfo("human verification is disabled")
	}

	return nil
}
