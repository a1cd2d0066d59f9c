package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/feed"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

var (
	chatUpdatesOnly bool
	chatFollow      bool
	chatPost        string
	chatAsUpdate    bool
	chatLimit       int
)

// NewChatCommand creates the chat command
func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <project>",
		Short: "Read or post to a project's chat",
		Long: `Print a project's chat room, post a message, or follow the room as
new messages arrive. Messages marked as updates form the project's update
feed.

Examples:
  buildtrack chat "metro bridge"
  buildtrack chat 3 --updates
  buildtrack chat 3 --post "Deck pour complete" --update
  buildtrack chat 3 --follow`,
		Args: cobra.ExactArgs(1),
		RunE: runChat,
	}

	cmd.Flags().BoolVar(&chatUpdatesOnly, "updates", false, "Only show project updates")
	cmd.Flags().BoolVarP(&chatFollow, "follow", "f", false, "Keep polling for new messages")
	cmd.Flags().StringVar(&chatPost, "post", "", "Post a message")
	cmd.Flags().BoolVar(&chatAsUpdate, "update", false, "Post the message as a project update")
	cmd.Flags().IntVarP(&chatLimit, "limit", "n", 20, "Show at most this many messages (0 for all)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatAsUpdate && chatPost == "" {
		return errors.New("--update needs --post")
	}

	return withProject(cmd, args[0], func(ctx context.Context, cc *cli.CommandContext, client *api.Client, p *models.Project) error {
		room, err := client.RoomForProject(ctx, p.ID)
		if api.IsNotFound(err) {
			return fmt.Errorf("%s has no chat room", p.Title)
		}
		if err != nil {
			return err
		}
		poller := feed.NewPoller(feed.FromSession(cc.Session), room.ID, cc.Settings.PollInterval, cc.Logger)

		var batch feed.Batch
		if chatPost != "" {
			batch = poller.Send(ctx, chatPost, chatAsUpdate)
			if batch.Err == nil {
				cli.PrintSuccess("Posted to %s", p.Title)
			}
		} else {
			batch = poller.Fetch(ctx)
		}
		if batch.Err != nil {
			return batch.Err
		}

		msgs := visibleMessages(batch.Messages)
		if structured() {
			return cli.OutputResults(cmd.OutOrStdout(), outputFormat, msgs)
		}
		if len(msgs) == 0 {
			if chatUpdatesOnly {
				cli.PrintInfo("No updates posted yet")
			} else {
				cli.PrintInfo("No messages yet")
			}
		}
		printMessages(cmd.OutOrStdout(), msgs)
		if !chatFollow {
			return nil
		}
		// the request timeout does not apply while following
		return followChat(cmd, poller)
	})
}

// followChat polls until interrupted, printing only new messages
func followChat(cmd *cobra.Command, poller *feed.Poller) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.PrintInfo("Following, press Ctrl+C to stop")
	err := poller.Run(ctx, func(b feed.Batch) {
		if b.Err != nil {
			cli.PrintWarning("Could not reach the chat: %v", b.Err)
			return
		}
		printMessages(cmd.OutOrStdout(), visibleMessages(b.New))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func visibleMessages(msgs []models.Message) []models.Message {
	if chatUpdatesOnly {
		msgs = feed.Updates(msgs)
	}
	if chatLimit > 0 && len(msgs) > chatLimit {
		msgs = msgs[len(msgs)-chatLimit:]
	}
	return msgs
}

func printMessages(w io.Writer, msgs []models.Message) {
	name := color.New(color.Bold)
	update := color.New(color.FgYellow)
	for _, m := range msgs {
		sender := "unknown"
		if m.Sender != nil {
			sender = m.Sender.DisplayName()
		}
		header := name.Sprint(sender) + "  " + messageTime(m.CreatedAt)
		if m.IsUpdate {
			header += "  " + update.Sprint("[update]")
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, cli.Indent(wordwrap.String(m.Content, answerWidth-2), "  "))
	}
}

func messageTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("Jan 2 15:04")
}
