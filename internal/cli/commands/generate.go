package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/client"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/config"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/types"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

var (
	generateModel  string
	generateOutput string
)

// generateCmd is the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [subject]",
	Short: "generate a knowledge graph in one shot",
	Long: `Generate a complete knowledge graph for a subject and print it once
the whole graph is ready. Use 'kgctl stream' to watch entities arrive
as they are generated instead.`,
	Example: `  # Generate and pretty-print
  $ kgctl generate "quantum computing"

  # Generate with a specific model, output as JSON
  $ kgctl generate "quantum computing" -m gpt-4o-mini -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "generation model (defaults to the configured model)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "pretty", "output format: pretty or json")
	generateCmd.SilenceUsage = true
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateOutput != "pretty" && generateOutput != "json" {
		ui.PrintError("invalid output format: %s", generateOutput)
		return fmt.Errorf("invalid arguments")
	}

	cfg, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	subject, err := resolveSubject(args)
	if err != nil {
		return err
	}

	model := generateModel
	if model == "" {
		model = cfg.Model
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ui.PrintInfo("generating graph for %q...", subject)

	result, err := apiClient.Generate(ctx, &types.GenerateRequest{
		Subject: subject,
		Model:   model,
	})
	if err != nil {
		ui.PrintError("generation failed: %v", err)
		return fmt.Errorf("generation failed")
	}

	return ui.PrintGraphResult(result, generateOutput == "json")
}

// loadClient loads the CLI config and builds a client for the configured
// server.
func loadClient() (*config.Config, *client.APIClient, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, fmt.Errorf("config load failed")
	}

	apiClient, err := client.NewAPIClient(cfg.Server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, fmt.Errorf("client creation failed")
	}

	return cfg, apiClient, nil
}

// resolveSubject takes the subject from args or prompts for one.
func resolveSubject(args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}

	var subject string
	prompt := &survey.Input{
		Message: "Subject:",
		Help:    "the topic to build a knowledge graph for",
	}
	if err := survey.AskOne(prompt, &subject, survey.WithValidator(survey.Required)); err != nil {
		return "", fmt.Errorf("input cancelled")
	}

	return strings.TrimSpace(subject), nil
}
