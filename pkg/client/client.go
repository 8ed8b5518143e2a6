// Package client talks to the forum API over HTTP. It satisfies the
// storage and authentication interfaces of the registration form and
// dashboard controllers so they can run outside the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/forum-inscriptions-api/internal/dashboard"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client calls the API rooted at baseURL, e.g. http://localhost:8080/api/v1.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends the request and decodes the envelope data into out. API errors
// come back as *errors.Error so callers can match them with errors.Is.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return appErrors.New(http.StatusText(resp.StatusCode), resp.StatusCode, fmt.Sprintf("%s %s failed", method, path))
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 400 {
		if env.Error != nil {
			env.Error.Status = resp.StatusCode
			return env.Error
		}
		return appErrors.New(http.StatusText(resp.StatusCode), resp.StatusCode, fmt.Sprintf("%s %s failed", method, path))
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}

// CodeExists implements registration.Lookup.
func (c *Client) CodeExists(ctx context.Context, code string) (bool, error) {
	var check models.CodeCheck
	if err := c.do(ctx, http.MethodGet, "/inscriptions/check?code="+url.QueryEscape(code), nil, &check); err != nil {
		return false, err
	}
	return check.Valid && !check.Available, nil
}

// Submit implements registration.Submitter.
func (c *Client) Submit(ctx context.Context, reg models.Registration) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := c.do(ctx, http.MethodPost, "/inscriptions", reg, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Login implements dashboard.Authenticator and keeps the marker for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var session models.Session
	if err := c.do(ctx, http.MethodPost, "/admin/login", models.LoginRequest{Email: email, Password: password}, &session); err != nil {
		return "", err
	}
	c.SetToken(session.Token)
	return session.Token, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/admin/logout", nil, nil)
	c.SetToken("")
	return err
}

// List implements dashboard.Store. The server default order is newest first.
func (c *Client) List(ctx context.Context) ([]models.Inscription, error) {
	var records []models.Inscription
	if err := c.do(ctx, http.MethodGet, "/admin/inscriptions", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	return c.do(ctx, http.MethodPatch, "/admin/inscriptions/"+url.PathEscape(id)+"/status", update, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/inscriptions/"+url.PathEscape(id), nil, nil)
}

// Export downloads the view rendered in format and returns the file.
func (c *Client) Export(ctx context.Context, view dashboard.View, format string) (*models.ExportFile, error) {
	q := url.Values{}
	q.Set("format", format)
	if view.Status != "" {
		q.Set("status", string(view.Status))
	}
	if view.Search != "" {
		q.Set("search", view.Search)
	}
	if view.Sort != "" {
		q.Set("sort", string(view.Sort))
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/inscriptions/export?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if resp.StatusCode >= 400 {
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			env.Error.Status = resp.StatusCode
			return nil, env.Error
		}
		return nil, appErrors.New(http.StatusText(resp.StatusCode), resp.StatusCode, "export failed")
	}

	file := &models.ExportFile{ContentType: resp.Header.Get("Content-Type"), Body: body, Filename: "inscriptions." + format}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		file.Filename = params["filename"]
	}
	return file, nil
}
