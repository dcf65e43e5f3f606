package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/client"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/config"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

var (
	connectServer string
	connectModel  string
)

// connectCmd is the connect command
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "point the CLI at an API server",
	Long: `Verify an API server is reachable and save its address as the default
for later commands. Optionally pick a default generation model from the
server's catalog.`,
	Example: `  # Connect with flags
  $ kgctl connect -s http://localhost:9000

  # Interactive
  $ kgctl connect`,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVarP(&connectServer, "server", "s", "", "API server address")
	connectCmd.Flags().StringVarP(&connectModel, "model", "m", "", "default generation model")
	connectCmd.SilenceUsage = true
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	server := connectServer
	if server == "" {
		prompt := &survey.Input{
			Message: "API server address:",
			Default: cfg.Server,
		}
		if err := survey.AskOne(prompt, &server, survey.WithValidator(survey.Required)); err != nil {
			return fmt.Errorf("input cancelled")
		}
	}

	apiClient, err := client.NewAPIClient(server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ready, err := apiClient.Readiness(ctx)
	if err != nil {
		ui.PrintError("server not reachable: %v", err)
		return fmt.Errorf("connection check failed")
	}

	model := connectModel
	if model == "" && len(ready.Models) > 0 {
		prompt := &survey.Select{
			Message: "Default generation model:",
			Options: ready.Models,
			Default: ready.Models[0],
		}
		if err := survey.AskOne(prompt, &model); err != nil {
			return fmt.Errorf("selection cancelled")
		}
	}

	cfg.Server = server
	cfg.Model = model
	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	ui.PrintSuccess("connected to %s", server)
	if model != "" {
		ui.PrintInfo("default model: %s", model)
	}
	if ready.Verification {
		ui.PrintInfo("server requires human verification for streaming requests")
	}

	return nil
}
