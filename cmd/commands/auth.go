package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

var (
	loginUsername string
	loginPassword string

	signupEmail     string
	signupFirstName string
	signupLastName  string
	signupRole      string
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in to the API. Tokens are stored under data_dir and refreshed
automatically. Missing credentials are prompted for.

Examples:
  buildtrack login -u supervisor
  buildtrack login -u supervisor -p supervisor123`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	cc, err := commandContext()
	if err != nil {
		return err
	}
	defer cc.Close()

	if err := promptMissing(&loginUsername, "Username"); err != nil {
		return err
	}
	if err := promptMissing(&loginPassword, "Password"); err != nil {
		return err
	}

	ctrl := cc.Session.SignInForm()
	if err := cli.ApplyAssignments(ctrl, []cli.Assignment{
		{Field: "username", Value: loginUsername},
		{Field: "password", Value: loginPassword},
	}); err != nil {
		return err
	}

	ctx, cancel := cc.Context(cmd.Context())
	defer cancel()
	if _, err := ctrl.Submit(ctx); err != nil {
		return formError(err)
	}
	return printSignedIn(cmd, cc.Session.User)
}

// NewSignupCommand creates the signup command
func NewSignupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Long: `Register a new account. Supervisors can create and edit projects,
workers can view the projects they are assigned to.

Examples:
  buildtrack signup -u jordan --email jordan@example.com --role supervisor`,
		Args: cobra.NoArgs,
		RunE: runSignup,
	}

	cmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	cmd.Flags().StringVar(&signupEmail, "email", "", "Email address")
	cmd.Flags().StringVar(&signupFirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&signupLastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&signupRole, "role", models.RoleWorker, "Role: worker or supervisor")

	return cmd
}

func runSignup(cmd *cobra.Command, args []string) error {
	cc, err := commandContext()
	if err != nil {
		return err
	}
	defer cc.Close()

	for _, p := range []struct {
		value *string
		label string
	}{
		{&loginUsername, "Username"},
		{&signupEmail, "Email"},
		{&loginPassword, "Password"},
	} {
		if err := promptMissing(p.value, p.label); err != nil {
			return err
		}
	}
	if err := cli.ValidateEmail(signupEmail); err != nil {
		return err
	}

	ctrl := cc.Session.SignUpForm()
	if err := cli.ApplyAssignments(ctrl, []cli.Assignment{
		{Field: "username", Value: loginUsername},
		{Field: "email", Value: signupEmail},
		{Field: "first_name", Value: signupFirstName},
		{Field: "last_name", Value: signupLastName},
		{Field: "role", Value: signupRole},
		{Field: "password", Value: loginPassword},
		{Field: "password2", Value: loginPassword},
	}); err != nil {
		return err
	}

	ctx, cancel := cc.Context(cmd.Context())
	defer cancel()
	if _, err := ctrl.Submit(ctx); err != nil {
		return formError(err)
	}
	return printSignedIn(cmd, cc.Session.User)
}

func printSignedIn(cmd *cobra.Command, cached func() (*models.User, error)) error {
	user, err := cached()
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("signed in but no profile was stored")
	}
	if structured() {
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, user)
	}
	cli.PrintSuccess("Signed in as %s (%s)", user.DisplayName(), user.Role)
	return nil
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := commandContext()
			if err != nil {
				return err
			}
			defer cc.Close()

			if err := cc.Session.Logout(); err != nil {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			cli.PrintSuccess("Signed out")
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := commandContext()
			if err != nil {
				return err
			}
			defer cc.Close()

			if _, err := cc.RequireUser(); err != nil {
				return err
			}
			ctx, cancel := cc.Context(cmd.Context())
			defer cancel()
			user, err := cc.Session.Profile(ctx)
			if err != nil {
				return err
			}

			if structured() {
				return cli.OutputResults(cmd.OutOrStdout(), outputFormat, user)
			}
			tbl := cli.NewTable("FIELD", "VALUE")
			tbl.AddRow("Username", user.Username)
			tbl.AddRow("Name", user.DisplayName())
			tbl.AddRow("Email", user.Email)
			tbl.AddRow("Role", models.HumanizeKey(user.Role))
			tbl.AddRow("Server", cc.Settings.APIURL)
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
}

func promptMissing(value *string, label string) error {
	if strings.TrimSpace(*value) != "" {
		return nil
	}
	v, err := cli.Prompt(label)
	if err != nil {
		return fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	*value = v
	return nil
}

// formError lists the per-field problems under the submit message
func formError(err error) error {
	var serr *form.SubmitError
	if !errors.As(err, &serr) || len(serr.Fields) == 0 {
		return err
	}
	lines := []string{serr.Message}
	for _, f := range serr.Fields.Fields() {
		lines = append(lines, fmt.Sprintf("  %s: %s", f, serr.Fields[f]))
	}
	return errors.New(strings.Join(lines, "\n"))
}
