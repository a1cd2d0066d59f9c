package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/config"
	"github.com/buildtrack/buildtrack-terminal/pkg/demoapi"
)

var (
	serveAddr      string
	serveAccessTTL time.Duration
	serveLogLevel  string
)

// NewServeDemoCommand creates the serve-demo command
func NewServeDemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-demo",
		Short: "Run an in-memory demo API server",
		Long: `Run a demo backend that speaks the same REST API as the real server.
Data lives in memory and is lost on exit. Two accounts are seeded:

  ` + demoapi.SupervisorUsername + ` / ` + demoapi.SupervisorPassword + `  (supervisor)
  ` + demoapi.WorkerUsername + ` / ` + demoapi.WorkerPassword + `          (worker, ` + demoapi.WorkerEmail + `)

Examples:
  buildtrack serve-demo
  buildtrack serve-demo --addr 127.0.0.1:9000 --access-ttl 2m`,
		Args: cobra.NoArgs,
		RunE: runServeDemo,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().DurationVar(&serveAccessTTL, "access-ttl", demoapi.DefaultAccessTTL, "Access token lifetime")
	cmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Request log level")

	return cmd
}

func runServeDemo(cmd *cobra.Command, args []string) error {
	level, err := config.ParseLevel(serveLogLevel)
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, level)

	ln, err := net.Listen("tcp", serveAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           demoapi.New(demoapi.WithLogger(logger), demoapi.WithAccessTTL(serveAccessTTL)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx is done, then shuts down gracefully
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	cli.PrintSuccess("Demo API listening on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	cli.PrintInfo("Demo API stopped")
	return nil
}
