package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/types"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

var (
	streamModel   string
	streamCaptcha string
)

// streamCmd is the stream command
var streamCmd = &cobra.Command{
	Use:   "stream [subject]",
	Short: "stream a knowledge graph as it is generated",
	Long: `Stream a knowledge graph for a subject, printing each node and edge the
moment the model produces it. Press Ctrl+C to stop mid-stream.`,
	Example: `  # Stream a graph
  $ kgctl stream "quantum computing"

  # Pass a verification token when the server requires one
  $ kgctl stream "quantum computing" --captcha-token <token>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStream,
}

func init() {
	streamCmd.Flags().StringVarP(&streamModel, "model", "m", "", "generation model (defaults to the configured model)")
	streamCmd.Flags().StringVar(&streamCaptcha, "captcha-token", "", "human verification token")
	streamCmd.SilenceUsage = true
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	subject, err := resolveSubject(args)
	if err != nil {
		return err
	}

	model := streamModel
	if model == "" {
		model = cfg.Model
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C stops the stream cleanly instead of killing the process.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	frameCh, errCh, err := apiClient.StreamGraph(ctx, &types.GenerateRequest{
		Subject:      subject,
		Model:        model,
		CaptchaToken: streamCaptcha,
	})
	if err != nil {
		ui.PrintError("failed to open stream: %v", err)
		return fmt.Errorf("stream failed")
	}

	var (
		start types.StreamStart
		nodes int
		edges int
	)

	for frame := range frameCh {
		switch {
		case frame.Status == types.StatusComplete:
			fmt.Println()
			ui.PrintGraphSummary(start.Subject, start.Model, nodes, edges)
			return nil

		case frame.Status == types.StatusError:
			fmt.Println()
			ui.PrintErrorBox("Generation failed", "The server stopped the stream. Try again in a moment.")
			return fmt.Errorf("generation failed")

		case frame.Type == "node":
			var node types.Node
			if decodeEntity(frame.Entity, &node) {
				ui.PrintNode(node)
				nodes++
			}

		case frame.Type == "edge":
			var edge types.Edge
			if decodeEntity(frame.Entity, &edge) {
				ui.PrintEdge(edge)
				edges++
			}

		case frame.Result != nil:
			if decodeEntity(frame.Result, &start) {
				ui.PrintStreamStart(start)
			}
		}
	}

	if err := <-errCh; err != nil {
		ui.PrintError("stream interrupted: %v", err)
		return fmt.Errorf("stream failed")
	}

	// Cancelled by the user before the terminal frame arrived.
	fmt.Println()
	ui.PrintWarning("stream stopped")
	return nil
}

// decodeEntity re-decodes a loosely-typed frame payload into its concrete
// shape. Returns false when the payload does not fit.
func decodeEntity(payload any, out any) bool {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return false
	}
	return sonic.Unmarshal(data, out) == nil
}
