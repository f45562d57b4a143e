// Package client talks to the FarmConnect API. Client implements
// identity.Provider so an identity.Manager can run on top of it, and exposes
// the catalog, cart and order endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"farmconnect/identity"
	"farmconnect/models"

	"github.com/rs/zerolog"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	mu          sync.RWMutex
	session     *models.Session
	signupToken string

	listenersMu sync.Mutex
	listeners   map[int]func(identity.AuthEvent)
	nextID      int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSession resumes a session persisted by the caller.
func WithSession(s *models.Session) Option {
	return func(c *Client) { c.session = s }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    zerolog.Nop(),
		listeners: map[int]func(identity.AuthEvent){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the held session, or nil.
func (c *Client) Session() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

func (c *Client) setSession(s *models.Session) {
	c.mu.Lock()
	c.session = s
	c.signupToken = ""
	c.mu.Unlock()
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func errorKind(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return models.ErrValidation
	case status == http.StatusUnauthorized:
		return models.ErrAuthentication
	case status == http.StatusForbidden:
		return models.ErrPermission
	case status == http.StatusNotFound:
		return models.ErrNotFound
	case status == http.StatusConflict:
		return models.ErrDuplicate
	}
	return models.ErrNetwork
}

// do sends a JSON request and decodes the data member of the response
// envelope into out. Failures carry the model error kind of the status.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, token, out)
}

func (c *Client) send(req *http.Request, token string, out any) error {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", models.ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 400 {
		return fmt.Errorf("%w: decode %s response: %v", models.ErrNetwork, req.URL.Path, err)
	}

	if resp.StatusCode >= 400 {
		detail := env.Error
		if detail == "" {
			detail = env.Message
		}
		if detail == "" {
			detail = resp.Status
		}
		c.logger.Debug().Str("path", req.URL.Path).Int("status", resp.StatusCode).Str("error", detail).Msg("api call failed")
		return fmt.Errorf("%w: %s", errorKind(resp.StatusCode), detail)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: decode %s data: %v", models.ErrNetwork, req.URL.Path, err)
		}
	}
	return nil
}
