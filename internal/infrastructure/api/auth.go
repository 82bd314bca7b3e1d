package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"equipment-console/internal/domain"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Login authenticates and stores the returned token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.AuthResult{}, fmt.Errorf("email and password: %w", domain.ErrInvalidInput)
	}
	return c.authenticate(ctx, "/login", Credentials{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, reg Registration) (domain.AuthResult, error) {
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return domain.AuthResult{}, fmt.Errorf("email and password: %w", domain.ErrInvalidInput)
	}
	return c.authenticate(ctx, "/register", reg)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (domain.AuthResult, error) {
	resp, err := c.send(ctx, c.jsonRequest(ctx, body), http.MethodPost, path)
	if err != nil {
		return domain.AuthResult{}, err
	}
	result, err := decodeEntity[domain.AuthResult](resp.Body())
	if err != nil {
		return domain.AuthResult{}, err
	}
	if result.Token == "" {
		return domain.AuthResult{}, fmt.Errorf("%s: response carried no token: %w", path, domain.ErrTransport)
	}
	result.Message = messageOf(resp.Body())
	if err := c.session.Set(ctx, result.Token); err != nil {
		return result, fmt.Errorf("persist token: %w", err)
	}
	c.logger.Info(ctx, "authenticated", "user_id", result.User.ID, "permissions", len(result.Permissions))
	return result, nil
}

// Logout invalidates the token server-side. The local credential is cleared
// whatever the outcome of that call.
func (c *Client) Logout(ctx context.Context) (err error) {
	defer func() {
		if clearErr := c.session.Clear(ctx); clearErr != nil && err == nil {
			err = fmt.Errorf("drop token: %w", clearErr)
		}
	}()
	if !c.session.IsAuthenticated() {
		return nil
	}
	return sendAction(ctx, c, http.MethodPost, "/logout", nil)
}

// CurrentUser returns the authenticated user. The endpoint is not enveloped.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	if !c.session.IsAuthenticated() {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return getEntity[domain.User](ctx, c, "/user")
}

func (c *Client) IsAuthenticated() bool { return c.session.IsAuthenticated() }

func (c *Client) SetToken(ctx context.Context, token string) error {
	return c.session.Set(ctx, token)
}

func (c *Client) ClearToken(ctx context.Context) error {
	return c.session.Clear(ctx)
}
