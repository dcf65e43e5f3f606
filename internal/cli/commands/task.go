package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/client"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/types"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

var (
	taskModel string
	taskWait  bool
)

// taskCmd is the parent task command
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "run generations in the background",
	Long: `Submit a graph generation without waiting for it, then poll for the
result by task id. Task ids live in server memory and do not survive a
server restart.`,
	Example: `  # Submit and remember the task id
  $ kgctl task start "quantum computing"

  # Check on it later
  $ kgctl task result <task-id>

  # Submit and block until done
  $ kgctl task start "quantum computing" --wait`,
}

// taskStartCmd submits a background generation
var taskStartCmd = &cobra.Command{
	Use:   "start [subject]",
	Short: "submit a background generation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTaskStart,
}

// taskResultCmd polls a background generation
var taskResultCmd = &cobra.Command{
	Use:   "result <task-id>",
	Short: "poll a background generation by task id",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskResult,
}

func init() {
	taskStartCmd.Flags().StringVarP(&taskModel, "model", "m", "", "generation model (defaults to the configured model)")
	taskStartCmd.Flags().BoolVarP(&taskWait, "wait", "w", false, "poll until the generation finishes")
	taskCmd.AddCommand(taskStartCmd)
	taskCmd.AddCommand(taskResultCmd)
	taskCmd.SilenceUsage = true
	taskStartCmd.SilenceUsage = true
	taskResultCmd.SilenceUsage = true
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	cfg, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	subject, err := resolveSubject(args)
	if err != nil {
		return err
	}

	model := taskModel
	if model == "" {
		model = cfg.Model
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	taskID, err := apiClient.StartGenerate(ctx, &types.GenerateRequest{
		Subject: subject,
		Model:   model,
	})
	if err != nil {
		ui.PrintError("failed to submit generation: %v", err)
		return fmt.Errorf("submit failed")
	}

	ui.PrintSuccess("generation submitted")
	ui.PrintInfo("task id: %s", taskID)

	if !taskWait {
		fmt.Printf("\nRun 'kgctl task result %s' to check on it.\n", taskID)
		return nil
	}

	return pollUntilDone(apiClient, taskID)
}

func runTaskResult(cmd *cobra.Command, args []string) error {
	_, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	taskResp, err := apiClient.TaskResult(ctx, args[0])
	if err != nil {
		ui.PrintError("failed to poll task: %v", err)
		return fmt.Errorf("poll failed")
	}

	return printTaskResult(taskResp)
}

// pollUntilDone polls the task every few seconds until it leaves the
// processing state.
func pollUntilDone(apiClient *client.APIClient, taskID string) error {
	ui.PrintInfo("waiting for generation to finish...")

	for {
		time.Sleep(3 * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		taskResp, err := apiClient.TaskResult(ctx, taskID)
		cancel()
		if err != nil {
			ui.PrintError("failed to poll task: %v", err)
			return fmt.Errorf("poll failed")
		}

		if marker, ok := taskResp.Result.(string); ok && marker == "Processing..." {
			continue
		}

		return printTaskResult(taskResp)
	}
}

// printTaskResult renders a poll response: the progress marker, the error
// marker, or the finished graph.
func printTaskResult(taskResp *types.TaskResponse) error {
	switch result := taskResp.Result.(type) {
	case string:
		if result == "error" {
			ui.PrintErrorBox("Generation failed", "The background generation did not finish. Submit it again.")
			return fmt.Errorf("generation failed")
		}
		ui.PrintInfo("%s", result)
		return nil

	default:
		var graph types.GraphResult
		if !decodeEntity(taskResp.Result, &graph) {
			ui.PrintError("unexpected result shape")
			return fmt.Errorf("poll failed")
		}
		return ui.PrintGraphResult(&graph, false)
	}
}
