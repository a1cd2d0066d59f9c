package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

var workerRole string

// NewWorkerCommand groups the worker assignment commands
func NewWorkerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "worker",
		Aliases: []string{"workers"},
		Short:   "List, assign and remove project workers",
	}
	cmd.AddCommand(newWorkerListCommand(), newWorkerAddCommand(), newWorkerRemoveCommand())
	return cmd
}

func newWorkerListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List the workers assigned to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd, args[0], func(ctx context.Context, cc *cli.CommandContext, client *api.Client, p *models.Project) error {
				workers, err := client.ListWorkers(ctx, p.ID)
				if err != nil {
					return err
				}
				if structured() {
					return cli.OutputResults(cmd.OutOrStdout(), outputFormat, workers)
				}
				if len(workers) == 0 {
					cli.PrintInfo("No workers assigned to %s", p.Title)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.WorkerTable(workers))
				return nil
			})
		},
	}
}

func newWorkerAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <project> <email>",
		Short: "Assign a worker to a project by email",
		Long: `Assign a registered worker to a project. Only the project's supervisor
can assign workers.

Examples:
  buildtrack worker add "metro bridge" worker@buildtrack.local --role "Crane operator"`,
		Args: cobra.ExactArgs(2),
		RunE: runWorkerAdd,
	}
	cmd.Flags().StringVar(&workerRole, "role", "", "Role on the project")
	return cmd
}

func runWorkerAdd(cmd *cobra.Command, args []string) error {
	email := args[1]
	if err := cli.ValidateEmail(email); err != nil {
		return err
	}
	return withProject(cmd, args[0], func(ctx context.Context, cc *cli.CommandContext, client *api.Client, p *models.Project) error {
		gw := form.NewGateway(form.WorkerSchema,
			api.NewWorkerCollaborator(cc.Session.Base(), p.ID),
			cc.Session,
			form.WithLogger(cc.Logger),
			form.WithFailureMessage("Failed to assign worker. Please try again."),
		)
		ctrl := form.NewCreateController(form.WorkerSchema, gw)
		if err := cli.ApplyAssignments(ctrl, []cli.Assignment{
			{Field: "email", Value: email},
			{Field: "role_description", Value: workerRole},
		}); err != nil {
			return err
		}
		if _, err := ctrl.Submit(ctx); err != nil {
			return formError(err)
		}
		cli.PrintSuccess("Assigned %s to %s", email, p.Title)
		return nil
	})
}

func newWorkerRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <project> <worker>",
		Aliases: []string{"rm"},
		Short:   "Remove a worker from a project",
		Long: `Remove a worker, named by username, email or assignment id.

Examples:
  buildtrack worker remove "metro bridge" worker
  buildtrack worker remove 3 worker@buildtrack.local --yes`,
		Args: cobra.ExactArgs(2),
		RunE: runWorkerRemove,
	}
}

func runWorkerRemove(cmd *cobra.Command, args []string) error {
	return withProject(cmd, args[0], func(ctx context.Context, cc *cli.CommandContext, client *api.Client, p *models.Project) error {
		workers, err := client.ListWorkers(ctx, p.ID)
		if err != nil {
			return err
		}
		assignment, ok := findWorker(workers, args[1])
		if !ok {
			return fmt.Errorf("no worker '%s' on %s", args[1], p.Title)
		}

		name := assignment.Worker.DisplayName()
		confirmed, err := cli.Confirm(fmt.Sprintf("Remove %s from %s?", name, p.Title), false)
		if err != nil {
			return err
		}
		if !confirmed {
			cli.PrintInfo("Cancelled")
			return nil
		}
		if err := client.RemoveWorker(ctx, assignment.ID); err != nil {
			return err
		}
		cli.PrintSuccess("Removed %s from %s", name, p.Title)
		return nil
	})
}

// findWorker matches an assignment id, a username or an email
func findWorker(workers []models.ProjectWorker, ref string) (models.ProjectWorker, bool) {
	id, idErr := strconv.Atoi(ref)
	for _, w := range workers {
		if idErr == nil && w.ID == id {
			return w, true
		}
		if w.Worker == nil {
			continue
		}
		if strings.EqualFold(w.Worker.Username, ref) || strings.EqualFold(w.Worker.Email, ref) {
			return w, true
		}
	}
	return models.ProjectWorker{}, false
}

// withProject loads the context, signs in and resolves ref before calling fn
func withProject(cmd *cobra.Command, ref string, fn func(context.Context, *cli.CommandContext, *api.Client, *models.Project) error) error {
	cc, err := commandContext()
	if err != nil {
		return err
	}
	defer cc.Close()

	ctx, cancel := cc.Context(cmd.Context())
	defer cancel()
	client, err := cc.Client(ctx)
	if err != nil {
		return err
	}
	p, err := cli.NewProjectResolver(client).Resolve(ctx, ref)
	if err != nil {
		return err
	}
	return fn(ctx, cc, client, p)
}
