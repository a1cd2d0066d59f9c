package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
)

// Global flags
var (
	configPath   string
	outputFormat string
	quiet        bool
	noColor      bool
	assumeYes    bool
)

// NewRootCommand builds the buildtrack command tree. Running it without a
// subcommand starts the terminal UI.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "buildtrack",
		Short: "Terminal client for construction project management",
		Long: `buildtrack manages construction projects from the terminal: project
details, timelines, workers, suppliers, risks and the project chat.

Run it without arguments for the interactive UI, or use the subcommands
for scripting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.SetGlobalFlags(quiet, noColor, assumeYes)
			return cli.ValidateOutputFormat(outputFormat)
		},
		RunE: runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: .buildtrack.yaml in ., then $HOME)")
	flags.StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Only print results and errors")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")

	root.AddCommand(
		NewInitCommand(),
		NewVersionCommand(version),
		NewLoginCommand(),
		NewSignupCommand(),
		NewLogoutCommand(),
		NewWhoamiCommand(),
		NewProjectsCommand(),
		NewProjectCommand(),
		NewWorkerCommand(),
		NewClipboardCommand(),
		NewChatCommand(),
		NewAskCommand(),
		NewServeDemoCommand(),
	)
	return root
}

// NewVersionCommand creates the version command
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of buildtrack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" {
				return cli.OutputResults(cmd.OutOrStdout(), outputFormat, map[string]string{
					"version": version,
					"go":      runtime.Version(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "buildtrack version %s\n", version)
			return nil
		},
	}
}

// commandContext loads settings for commands that talk to the API
func commandContext() (*cli.CommandContext, error) {
	return cli.NewCommandContext(configPath)
}

// structured reports whether results should be printed as JSON or YAML
func structured() bool {
	return outputFormat == string(cli.FormatJSON) || outputFormat == string(cli.FormatYAML)
}
