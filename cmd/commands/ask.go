package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/chatbot"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

const answerWidth = 76

// NewAskCommand creates the ask command
func NewAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <project> [question...]",
		Short: "Ask the project assistant a question",
		Long: `Ask the demo project assistant about schedules, safety, risks and
resources. Without a question, the questions it has scripted answers for
are listed.

Examples:
  buildtrack ask "metro bridge"
  buildtrack ask 3 What is the current progress?`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args[1:], " "))
	return withProject(cmd, args[0], func(ctx context.Context, _ *cli.CommandContext, _ *api.Client, p *models.Project) error {
		out := cmd.OutOrStdout()
		if question == "" {
			questions := chatbot.Questions()
			if structured() {
				return cli.OutputResults(out, outputFormat, questions)
			}
			fmt.Fprintf(out, "Questions the %s assistant can answer:\n", p.Title)
			for _, q := range questions {
				fmt.Fprintf(out, "  • %s\n", q)
			}
			return nil
		}

		answer := chatbot.New(p.Title, nil).Respond(question)
		if structured() {
			return cli.OutputResults(out, outputFormat, map[string]string{
				"project":  p.Title,
				"question": question,
				"answer":   answer,
			})
		}
		fmt.Fprintln(out, wordwrap.String(answer, answerWidth))
		return nil
	})
}
