package main

import (
	"context"
	"os"

	"github.com/buildtrack/buildtrack-terminal/cmd/commands"
	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/tui"
)

// Version is set during build with -ldflags
var version = "dev"

func main() {
	tui.Version = version
	root := commands.NewRootCommand(version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		cli.PrintError("%v", err)
		os.Exit(1)
	}
}
