package commands

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

var clipboardPrint bool

// copyText is replaced in tests
var copyText = clipboard.WriteAll

// NewClipboardCommand creates the clipboard command
func NewClipboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clipboard <project>",
		Aliases: []string{"clip", "copy"},
		Short:   "Copy a project summary to the clipboard",
		Long: `Copy a plain-text project summary (status, dates, budget, workers,
supervisor) to the system clipboard, ready to paste into an email or report.

Examples:
  buildtrack clipboard "metro bridge"
  buildtrack clipboard 3 --print`,
		Args: cobra.ExactArgs(1),
		RunE: runClipboard,
	}

	cmd.Flags().BoolVar(&clipboardPrint, "print", false, "Also print the summary")

	return cmd
}

func runClipboard(cmd *cobra.Command, args []string) error {
	return withProject(cmd, args[0], func(ctx context.Context, _ *cli.CommandContext, _ *api.Client, p *models.Project) error {
		summary := p.Summary()
		if err := copyText(summary); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		if clipboardPrint {
			fmt.Fprint(cmd.OutOrStdout(), summary)
		}
		cli.PrintSuccess("Copied %s to clipboard", p.Title)
		return nil
	})
}
