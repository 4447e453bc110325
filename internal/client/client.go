// Package client is a typed HTTP client for the notes API. It carries the
// session cookie itself so callers can persist it between runs.
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

	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/domain/user"
)

const sessionCookieName = "notes_session"

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex // guards session
	session string

	// serializes mutation then refresh sequences
	refreshMu sync.Mutex
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithSession resumes a previously saved session token.
func WithSession(token string) Option {
	return func(c *Client) {
		c.session = strings.TrimSpace(token)
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:8080"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// Session returns the current session token, empty when signed out.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

type rawResponse struct {
	body        []byte
	contentType string
	filename    string
}

func (c *Client) do(ctx context.Context, method, path string, body any, v any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}

	if v == nil || len(raw.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw.body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) (rawResponse, error) {
	if c == nil {
		return rawResponse{}, fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return rawResponse{}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return rawResponse{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session(); token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rawResponse{}, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	c.captureSession(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return rawResponse{}, extractError(resp.StatusCode, data)
	}

	out := rawResponse{body: data, contentType: resp.Header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		out.filename = params["filename"]
	}
	return out, nil
}

func (c *Client) captureSession(resp *http.Response) {
	for _, ck := range resp.Cookies() {
		if ck.Name != sessionCookieName {
			continue
		}

		c.mu.Lock()
		if ck.MaxAge < 0 || ck.Value == "" {
			c.session = ""
		} else {
			c.session = ck.Value
		}
		c.mu.Unlock()
	}
}

func extractError(status int, data []byte) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if len(data) > 0 && json.Unmarshal(data, &payload) == nil {
		return APIError{Status: status, Code: payload.Error.Code, Message: strings.TrimSpace(payload.Error.Message)}
	}

	return APIError{Status: status, Message: strings.TrimSpace(string(data))}
}

type userEnvelope struct {
	User user.User `json:"user"`
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	var resp userEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return user.User{}, err
	}
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	var resp userEnvelope
	body := user.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return user.User{}, err
	}
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = ""
	c.mu.Unlock()
	return nil
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	var resp userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return user.User{}, err
	}
	return resp.User, nil
}

// ListOptions mirrors the list query parameters. Zero values use server defaults.
type ListOptions struct {
	Query        string
	Date         string
	Sort         string
	HideArchived bool
}

func (o ListOptions) encode() string {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Date != "" {
		v.Set("date", o.Date)
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.HideArchived {
		v.Set("hideArchived", "true")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListNotes(ctx context.Context, opts ListOptions) ([]note.Note, error) {
	var notes []note.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes"+opts.encode(), nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (note.Note, error) {
	var n note.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &n); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (c *Client) CreateNote(ctx context.Context, req note.CreateRequest) (note.Note, error) {
	var n note.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", req, &n); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, req note.PatchRequest) (note.Note, error) {
	var n note.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), req, &n); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

// MutateThenList runs mutate and then reloads the list. Concurrent calls are
// serialized so two reloads never interleave.
func (c *Client) MutateThenList(ctx context.Context, mutate func(ctx context.Context) error, opts ListOptions) ([]note.Note, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if err := mutate(ctx); err != nil {
		return nil, err
	}
	return c.ListNotes(ctx, opts)
}

// Export is a rendered document as returned by the server.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

func (c *Client) ExportNote(ctx context.Context, id, format string) (Export, error) {
	return c.export(ctx, "/api/notes/"+url.PathEscape(id)+"/export", url.Values{"format": {format}})
}

// ExportDate renders the notes due on date (YYYY-MM-DD). An empty date means today.
func (c *Client) ExportDate(ctx context.Context, date, format string) (Export, error) {
	v := url.Values{"format": {format}}
	if date != "" {
		v.Set("date", date)
	}
	return c.export(ctx, "/api/notes/export", v)
}

func (c *Client) export(ctx context.Context, path string, v url.Values) (Export, error) {
	if v.Get("format") == "" {
		v.Del("format")
	}
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	raw, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Export{}, err
	}

	return Export{Filename: raw.filename, ContentType: raw.contentType, Body: raw.body}, nil
}
