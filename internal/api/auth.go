package api

import (
	"context"
)

// User is the backend's account payload.
type User struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RegisterRequest is the account-creation payload.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginRequest is the authentication payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Register creates an account. The session cookie the backend sets makes the
// new account the active session; fetch the profile with CurrentUser.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, "POST", registerPath, req, nil)
}

// Login authenticates the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) error {
	return c.do(ctx, "POST", loginPath, req, nil)
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "POST", logoutPath, nil, nil)
}

// CurrentUser fetches the profile of the active session.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "GET", userPath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Permissions fetches the active session's permission list.
func (c *Client) Permissions(ctx context.Context) ([]string, error) {
	var permissions []string
	if err := c.do(ctx, "GET", permissionsPath, nil, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}
