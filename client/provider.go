package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"farmconnect/identity"
	"farmconnect/models"
)

var _ identity.Provider = (*Client)(nil)

// GetSession asks the API whether the held session is still good. A session
// the API rejects is dropped and reported as no session.
func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	token := c.accessToken()
	if token == "" {
		return nil, nil
	}

	var s models.Session
	err := c.do(ctx, http.MethodGet, "/auth/session", token, nil, &s)
	if errors.Is(err, models.ErrAuthentication) {
		c.mu.Lock()
		if c.session != nil && c.session.AccessToken == token {
			c.session = nil
		}
		c.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var s models.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: email, Password: password}, &s); err != nil {
		return nil, err
	}
	c.setSession(&s)
	c.notify(identity.AuthEvent{Type: identity.SignedIn, Session: &s})
	return &s, nil
}

// SignUp creates the account. The session of an account that needs no
// confirmation is kept without a SignedIn event, since the profile does not
// exist yet; otherwise the signup token is kept for InsertProfile.
func (c *Client) SignUp(ctx context.Context, email, password string, meta models.AccountMetadata) (*models.SignupResult, error) {
	var res models.SignupResult
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", models.SignupRequest{
		Email:    email,
		Password: password,
		Metadata: meta,
	}, &res)
	if err != nil {
		return nil, err
	}

	if res.Session != nil {
		c.setSession(res.Session)
	} else {
		c.mu.Lock()
		c.signupToken = res.SignupToken
		c.mu.Unlock()
	}
	return &res, nil
}

// SignOut revokes the session on the API. The local session is dropped and
// SignedOut is emitted even when the API call fails.
func (c *Client) SignOut(ctx context.Context) error {
	token := c.accessToken()
	var err error
	if token != "" {
		err = c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
	}

	c.mu.Lock()
	c.session = nil
	c.signupToken = ""
	c.mu.Unlock()

	c.notify(identity.AuthEvent{Type: identity.SignedOut})
	return err
}

func (c *Client) OnAuthStateChange(fn func(identity.AuthEvent)) (unsubscribe func()) {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Client) notify(ev identity.AuthEvent) {
	c.listenersMu.Lock()
	fns := make([]func(identity.AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(userID), c.accessToken(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertProfile stores the profile with the session, or with the signup
// token of an account still waiting for confirmation.
func (c *Client) InsertProfile(ctx context.Context, profile models.Profile) error {
	c.mu.RLock()
	token := c.signupToken
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.RUnlock()

	err := c.do(ctx, http.MethodPost, "/profiles", token, models.CreateProfileRequest{
		ID:       profile.ID,
		Name:     profile.Name,
		Role:     profile.Role,
		Location: profile.Location,
		Phone:    profile.Phone,
	}, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.signupToken = ""
	c.mu.Unlock()
	return nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error {
	return c.do(ctx, http.MethodPatch, "/profiles/"+url.PathEscape(userID), c.accessToken(), req, nil)
}

func (c *Client) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/change-password", c.accessToken(), req, nil)
}

// DeleteAccount removes the signed-in account and signs out locally.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/auth/account", c.accessToken(), nil, nil); err != nil {
		return err
	}
	c.setSession(nil)
	c.notify(identity.AuthEvent{Type: identity.SignedOut})
	return nil
}
