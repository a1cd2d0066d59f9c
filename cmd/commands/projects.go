package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

var (
	projectsStatus string
	projectsSearch string
	showResources  bool
)

// NewProjectsCommand creates the projects list command
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"ls"},
		Short:   "List the projects you can see",
		Long: `List projects, newest first. Supervisors see the projects they run,
workers see the projects they are assigned to.

Examples:
  buildtrack projects
  buildtrack projects --status in_progress
  buildtrack projects --search bridge -o json`,
		Args: cobra.NoArgs,
		RunE: runProjects,
	}

	cmd.Flags().StringVar(&projectsStatus, "status", "", "Only show one status: "+strings.Join(models.ProjectStatuses(), ", "))
	cmd.Flags().StringVarP(&projectsSearch, "search", "s", "", "Filter by title or location")

	return cmd
}

func runProjects(cmd *cobra.Command, args []string) error {
	if projectsStatus != "" && !slices.Contains(models.ProjectStatuses(), projectsStatus) {
		return fmt.Errorf("invalid status: %s (must be one of: %s)", projectsStatus, strings.Join(models.ProjectStatuses(), ", "))
	}

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
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return err
	}
	projects = filterProjects(projects, projectsStatus, projectsSearch)

	if structured() {
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, projects)
	}
	if len(projects) == 0 {
		cli.PrintInfo("No projects found")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.ProjectTable(projects))
	return nil
}

func filterProjects(projects []models.Project, status, search string) []models.Project {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []models.Project
	for _, p := range projects {
		if status != "" && p.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Location), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NewProjectCommand groups the single-project commands
func NewProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show, create and update projects",
	}
	cmd.AddCommand(newProjectShowCommand(), newProjectCreateCommand(), newProjectUpdateCommand())
	return cmd
}

func newProjectShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Display a project",
		Long: `Display a project by id or title.

Examples:
  buildtrack project show 3
  buildtrack project show "metro bridge" --resources
  buildtrack project show bridge -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runProjectShow,
	}
	cmd.Flags().BoolVarP(&showResources, "resources", "r", false, "Include timeline, workers, suppliers and risks")
	return cmd
}

func runProjectShow(cmd *cobra.Command, args []string) error {
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
	p, err := cli.NewProjectResolver(client).Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	if showResources {
		if err := loadResources(ctx, client, p); err != nil {
			return err
		}
	}

	if structured() {
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, p)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, p.Summary())
	if !showResources {
		return nil
	}
	sections := []struct {
		title string
		count int
		table fmt.Stringer
	}{
		{"Timeline", len(p.TimelineEvents), cli.TimelineTable(p.TimelineEvents)},
		{"Workers", len(p.Workers), cli.WorkerTable(p.Workers)},
		{"Suppliers", len(p.Suppliers), cli.SupplierTable(p.Suppliers)},
		{"Risks", len(p.Risks), cli.RiskTable(p.Risks)},
	}
	for _, s := range sections {
		fmt.Fprintf(out, "\n%s (%d)\n", s.title, s.count)
		if s.count > 0 {
			fmt.Fprintln(out, s.table)
		}
	}
	return nil
}

// loadResources fills the sub-resource lists the detail endpoint leaves out
func loadResources(ctx context.Context, client *api.Client, p *models.Project) error {
	var err error
	if p.TimelineEvents, err = client.ListTimeline(ctx, p.ID); err != nil {
		return err
	}
	if p.Workers, err = client.ListWorkers(ctx, p.ID); err != nil {
		return err
	}
	if p.Suppliers, err = client.ListSuppliers(ctx, p.ID); err != nil {
		return err
	}
	p.Risks, err = client.ListRisks(ctx, p.ID)
	return err
}
