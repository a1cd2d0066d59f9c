package commands

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/config"
)

var (
	initPath  string
	initForce bool
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write the default settings to a YAML config file.

Examples:
  # Create ~/.buildtrack.yaml
  buildtrack init

  # Point a project directory at a different API
  buildtrack init --path ./.buildtrack.yaml`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().StringVar(&initPath, "path", "", "Where to write the file (default: ~/.buildtrack.yaml)")
	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, config.FileName+".yaml")
	}
	if err := config.WriteDefault(path, initForce); err != nil {
		return err
	}
	cli.PrintSuccess("Wrote %s", path)
	cli.PrintInfo("Edit api_url to point at your server, then run 'buildtrack login'")
	return nil
}
