package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/pkg/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cc, err := commandContext()
	if err != nil {
		return err
	}
	defer cc.Close()

	cc.Logger.Info("starting tui", "api_url", cc.Settings.APIURL, "config", cc.Settings.ConfigFile)
	app := tui.NewApp(tui.Options{
		Session:        cc.Session,
		PollInterval:   cc.Settings.PollInterval,
		RequestTimeout: cc.Settings.RequestTimeout,
		Logger:         cc.Logger,
		ShowHelp:       cc.Settings.UI.ShowHelp,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start the terminal user interface: %w", err)
	}
	return nil
}
