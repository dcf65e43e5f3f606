package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/ui"
)

const version = "0.1.0"

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "kgctl",
	Short:   "Knowledge Graph CLI",
	Version: version,
	Long: `A command-line tool for generating knowledge graphs from free-text
subjects. Streams nodes and edges to the terminal as the model produces
them, or runs generations in the background and polls for the result.`,
	Example: `  # Point the CLI at an API server
  $ kgctl connect -s http://localhost:9000

  # Stream a graph for a subject
  $ kgctl stream "quantum computing"

  # Generate in one shot and print JSON
  $ kgctl generate "quantum computing" -o json

  # Run in the background and poll
  $ kgctl task start "quantum computing"
  $ kgctl task result <task-id>`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(statusCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("kgctl version %s\n", version)
}
