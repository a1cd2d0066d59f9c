package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
)

var (
	projectSets  []string
	projectEdit  bool
	projectPlace string
)

func newProjectCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long: `Create a project from --set field=value pairs, or fill the form in
$EDITOR with --edit. Sections are checked in order, so a missing start date
is reported before anything is sent.

Fields:
` + fieldList(form.ProjectSchema) + `
Examples:
  buildtrack project create --set title="Metro Bridge" \
    --set start_date=2025-04-01 --set end_date=2025-12-15 --set budget=500000

  buildtrack project create --edit`,
		Args: cobra.NoArgs,
		RunE: runProjectCreate,
	}
	addFormFlags(cmd)
	return cmd
}

func newProjectUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Update a project",
		Long: `Update a project by id or title. Only the fields that change are sent.

Examples:
  buildtrack project update 3 --set status=in_progress --set current_spending=182000
  buildtrack project update "metro bridge" --edit
  buildtrack project update 3 --place "Riverside@51.5,-0.12"`,
		Args: cobra.ExactArgs(1),
		RunE: runProjectUpdate,
	}
	addFormFlags(cmd)
	return cmd
}

func addFormFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&projectSets, "set", nil, "Set a field (field=value), repeatable")
	cmd.Flags().BoolVarP(&projectEdit, "edit", "e", false, "Fill the form in $EDITOR")
	cmd.Flags().StringVar(&projectPlace, "place", "", "Set location and coordinates together (location[@lat,lng])")
}

func fieldList(schema *form.Schema) string {
	var b strings.Builder
	for _, id := range schema.Sections {
		fmt.Fprintf(&b, "  %s:", schema.Title(id))
		for _, f := range schema.FieldsIn(id) {
			name := f.Name
			if f.Required {
				name += "*"
			}
			b.WriteString(" " + name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// newProjectForm returns a create form, or an edit form when entity is set
func newProjectForm(cc *cli.CommandContext, entity *form.Entity) *form.Controller {
	gw := form.NewGateway(form.ProjectSchema,
		api.NewProjectCollaborator(cc.Session.Base()),
		cc.Session,
		form.WithLogger(cc.Logger),
		form.WithFailureMessage("Failed to save project. Please try again."),
	)
	var ctrl *form.Controller
	if entity == nil {
		ctrl = form.NewCreateController(form.ProjectSchema, gw)
	} else {
		ctrl = form.NewEditController(form.ProjectSchema, gw, entity)
	}
	ctrl.Subscribe(func(field string, values form.Values) {
		cc.Logger.Debug("form field set", "form", form.ProjectSchema.Name, "field", field, "value", form.Display(values[field]))
	})
	return ctrl
}

// fillForm applies the editor result, then --place, then the --set flags
func fillForm(ctrl *form.Controller) error {
	if projectEdit {
		template, err := cli.FormTemplate(ctrl.Schema(), ctrl.Values())
		if err != nil {
			return err
		}
		edited, err := cli.NewEditorLauncher().EditText("buildtrack-project-*.yaml", template)
		if err != nil {
			return err
		}
		assignments, err := cli.ParseFormTemplate(edited)
		if err != nil {
			return err
		}
		if err := cli.ApplyAssignments(ctrl, assignments); err != nil {
			return err
		}
	}

	if projectPlace != "" {
		place, err := cli.ParsePlace(projectPlace)
		if err != nil {
			return err
		}
		ctrl.SetCoordinates(place.Location, place.Lat, place.Lng)
	}

	assignments, err := cli.ParseAssignments(projectSets)
	if err != nil {
		return err
	}
	return cli.ApplyAssignments(ctrl, assignments)
}

// walkSections moves through every section the way the wizard does, so an
// incomplete section is reported by name
func walkSections(ctrl *form.Controller) error {
	for {
		moved, err := ctrl.Next()
		var incomplete *form.IncompleteSectionError
		if errors.As(err, &incomplete) {
			lines := []string{fmt.Sprintf("%s is incomplete:", ctrl.Schema().Title(incomplete.Section))}
			for _, f := range incomplete.Missing.Fields() {
				lines = append(lines, fmt.Sprintf("  %s: %s", f, incomplete.Missing[f]))
			}
			return errors.New(strings.Join(lines, "\n"))
		}
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}
	}
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if len(projectSets) == 0 && !projectEdit && projectPlace == "" {
		return errors.New("nothing to create: pass --set field=value, --place or --edit")
	}

	cc, err := commandContext()
	if err != nil {
		return err
	}
	defer cc.Close()

	user, err := cc.RequireUser()
	if err != nil {
		return err
	}
	if !user.IsSupervisor() {
		return errors.New("only supervisors can create projects")
	}

	ctrl := newProjectForm(cc, nil)
	if err := fillForm(ctrl); err != nil {
		return err
	}
	if err := walkSections(ctrl); err != nil {
		return err
	}

	ctx, cancel := cc.Context(cmd.Context())
	defer cancel()
	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		return formError(err)
	}

	id, err := strconv.Atoi(outcome.NavigateTo)
	if err != nil {
		return fmt.Errorf("server returned an invalid project id %q", outcome.NavigateTo)
	}
	if structured() {
		client, err := cc.Client(ctx)
		if err != nil {
			return err
		}
		p, err := client.GetProject(ctx, id)
		if err != nil {
			return err
		}
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, p)
	}
	cli.PrintSuccess("Created project %d: %s", id, ctrl.Values().String("title"))
	return nil
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	if len(projectSets) == 0 && !projectEdit && projectPlace == "" {
		return errors.New("nothing to update: pass --set field=value, --place or --edit")
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
	p, err := cli.NewProjectResolver(client).Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	entity, err := client.ProjectEntity(ctx, p.ID)
	if err != nil {
		return err
	}

	ctrl := newProjectForm(cc, entity)
	if err := fillForm(ctrl); err != nil {
		return err
	}
	req, err := ctrl.Request()
	if errors.Is(err, form.ErrNoChanges) {
		cli.PrintInfo("No changes to save")
		return nil
	}
	if err != nil {
		return err
	}
	changed := req.Payload.Clone()

	if _, err := ctrl.Submit(ctx); err != nil {
		return formError(err)
	}

	if structured() {
		updated, err := client.GetProject(ctx, p.ID)
		if err != nil {
			return err
		}
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, updated)
	}
	fields := make([]string, 0, len(changed))
	for _, f := range ctrl.Schema().Fields {
		if _, ok := changed[f.Name]; ok {
			fields = append(fields, f.Name)
		}
	}
	cli.PrintSuccess("Updated %s (%s)", ctrl.Values().String("title"), strings.Join(fields, ", "))
	return nil
}
