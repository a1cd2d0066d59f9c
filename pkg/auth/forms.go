package auth

import (
	"context"
	"strconv"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// SignIn submits form.SignInSchema through the session
type SignIn struct{ session *Session }

// SignUp submits form.SignUpSchema through the session and signs in
type SignUp struct{ session *Session }

var (
	_ form.Collaborator = SignIn{}
	_ form.Collaborator = SignUp{}
)

// SignInForm returns a sign-in form bound to s
func (s *Session) SignInForm() *form.Controller {
	gw := form.NewGateway(form.SignInSchema, SignIn{session: s}, nil,
		form.WithLogger(s.logger), form.WithFailureMessage("Sign in failed. Please try again."))
	return form.NewCreateController(form.SignInSchema, gw)
}

// SignUpForm returns a registration form bound to s
func (s *Session) SignUpForm() *form.Controller {
	gw := form.NewGateway(form.SignUpSchema, SignUp{session: s}, nil,
		form.WithLogger(s.logger), form.WithFailureMessage("Registration failed. Please try again."))
	return form.NewCreateController(form.SignUpSchema, gw)
}

func (c SignIn) Create(ctx context.Context, _ string, v form.Values) (*form.Entity, error) {
	user, err := c.session.Login(ctx, v.String("username"), v.String("password"))
	if err != nil {
		return nil, err
	}
	return userEntity(user), nil
}

func (SignIn) Update(context.Context, string, string, form.Values) (*form.Entity, error) {
	return nil, api.ErrUnsupported
}

func (c SignUp) Create(ctx context.Context, _ string, v form.Values) (*form.Entity, error) {
	user, err := c.session.Register(ctx, api.Registration{
		Username:  v.String("username"),
		Email:     v.String("email"),
		Password:  v.String("password"),
		Password2: v.String("password2"),
		FirstName: v.String("first_name"),
		LastName:  v.String("last_name"),
		Role:      v.String("role"),
	})
	if err != nil {
		return nil, err
	}
	return userEntity(user), nil
}

func (SignUp) Update(context.Context, string, string, form.Values) (*form.Entity, error) {
	return nil, api.ErrUnsupported
}

func userEntity(u *models.User) *form.Entity {
	return &form.Entity{
		ID: strconv.Itoa(u.ID),
		Values: form.Values{
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
		},
	}
}
