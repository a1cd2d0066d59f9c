package api

import (
	"context"
	"net/http"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// Registration is the sign-up payload
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Login exchanges credentials for an access/refresh pair
func (c *Client) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	var pair models.TokenPair
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/token/", nil, body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh trades a refresh token for a new access token
func (c *Client) Refresh(ctx context.Context, refresh string) (*models.TokenPair, error) {
	var pair models.TokenPair
	body := map[string]string{"refresh": refresh}
	if err := c.do(ctx, http.MethodPost, "/api/token/refresh/", nil, body, &pair); err != nil {
		return nil, err
	}
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}
	return &pair, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, r Registration) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/register/", nil, r, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns the signed-in user
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/profile/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
