package parse_client

import (
	"context"

	"github.com/mcdev12/dreamteams/go/clients"
)

type User struct {
	ObjectID     string `json:"objectId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	SessionToken string `json:"sessionToken"`
	CreatedAt    string `json:"createdAt"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// SignUp registers a user and returns it with a fresh session token.
func (c *ParseClient) SignUp(ctx context.Context, username, email, password string) (*User, error) {
	body, err := clients.EncodeJSON(credentials{Username: username, Password: password, Email: email})
	if err != nil {
		return nil, err
	}

	resp, err := c.Post(ctx, UsersEndpoint, body, map[string]string{RevocableSessionHeader: "1"})
	if err != nil {
		return nil, wrap("sign up", translateError(err))
	}

	var user User
	if err := clients.DecodeJSON(resp, &user); err != nil {
		return nil, err
	}
	user.Username = username
	user.Email = email

	return &user, nil
}

// LogIn exchanges credentials for a session token.
func (c *ParseClient) LogIn(ctx context.Context, username, password string) (*User, error) {
	body, err := clients.EncodeJSON(credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.Post(ctx, LoginEndpoint, body, map[string]string{RevocableSessionHeader: "1"})
	if err != nil {
		return nil, wrap("log in", translateError(err))
	}

	var user User
	if err := clients.DecodeJSON(resp, &user); err != nil {
		return nil, err
	}
	if user.Username == "" {
		user.Username = username
	}

	return &user, nil
}

// LogOut revokes a session token.
func (c *ParseClient) LogOut(ctx context.Context, sessionToken string) error {
	if _, err := c.Post(ctx, LogoutEndpoint, nil, sessionHeaders(sessionToken)); err != nil {
		return wrap("log out", translateError(err))
	}
	return nil
}
