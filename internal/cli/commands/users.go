package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/types"
	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

var (
	usersCount int
	usersModel string
)

// usersCmd is the users command
var usersCmd = &cobra.Command{
	Use:   "users [domain]",
	Short: "stream synthetic users for a domain",
	Long: `Stream synthetic user records for a product or research domain, printed
as they are generated.`,
	Example: `  # Ten users for a cooking app
  $ kgctl users "cooking app"

  # Twenty-five users
  $ kgctl users "cooking app" -n 25`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUsers,
}

func init() {
	usersCmd.Flags().IntVarP(&usersCount, "count", "n", 0, "number of users to generate")
	usersCmd.Flags().StringVarP(&usersModel, "model", "m", "", "generation model (defaults to the configured model)")
	usersCmd.SilenceUsage = true
}

func runUsers(cmd *cobra.Command, args []string) error {
	cfg, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	var domain string
	if len(args) == 1 {
		domain = args[0]
	} else {
		domain, err = resolveSubject(nil)
		if err != nil {
			return err
		}
	}

	model := usersModel
	if model == "" {
		model = cfg.Model
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	frameCh, errCh, err := apiClient.StreamUsers(ctx, &types.UsersRequest{
		Domain:        domain,
		NumberOfUsers: usersCount,
		Model:         model,
	})
	if err != nil {
		ui.PrintError("failed to open stream: %v", err)
		return fmt.Errorf("stream failed")
	}

	count := 0
	for frame := range frameCh {
		switch {
		case frame.Status == types.StatusComplete:
			fmt.Println()
			ui.PrintSuccess("generated %d users", count)
			return nil

		case frame.Status == types.StatusError:
			fmt.Println()
			ui.PrintErrorBox("Generation failed", "The server stopped the stream. Try again in a moment.")
			return fmt.Errorf("generation failed")

		case frame.Name != "":
			ui.PrintUser(types.User{Name: frame.Name, Age: frame.Age})
			count++

		case frame.Result != nil:
			var start types.StreamStart
			if decodeEntity(frame.Result, &start) {
				ui.PrintStreamStart(start)
			}
		}
	}

	if err := <-errCh; err != nil {
		ui.PrintError("stream interrupted: %v", err)
		return fmt.Errorf("stream failed")
	}

	fmt.Println()
	ui.PrintWarning("stream stopped")
	return nil
}
