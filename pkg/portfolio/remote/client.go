// Package remote implements portfolio.Service against the REST surface of a
// running portfolio server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/api"
)

// Client talks to /api/v1 of a portfolio server
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithToken sets a previously issued session token
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ portfolio.Service = (*Client)(nil)

// Login exchanges the admin password for a session token used by later writes
func (c *Client) Login(ctx context.Context, password string) error {
	var resp api.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/admin/login", nil, api.LoginRequest{Password: password}, &resp); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "admin session started", "expires_at", resp.ExpiresAt)
	return nil
}

// Logout ends the session and forgets the token
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/admin/logout", nil, nil, nil)
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return err
}

// Token returns the current session token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) List(ctx context.Context, coll portfolio.Collection, q portfolio.Query) ([]portfolio.Record, error) {
	if !coll.IsValid() {
		return nil, fmt.Errorf("%w: %q", portfolio.ErrUnknownCollection, string(coll))
	}
	values := url.Values{}
	if q.ActiveOnly {
		values.Set("active", "true")
	}
	if q.Descending {
		values.Set("order", "desc")
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/collections/"+string(coll), values, nil, &raw); err != nil {
		return nil, &portfolio.RecordError{Collection: coll, Op: "list", Err: err}
	}
	out := make([]portfolio.Record, 0, len(raw))
	for _, data := range raw {
		rec, err := decodeRecord(coll, data)
		if err != nil {
			return nil, &portfolio.RecordError{Collection: coll, Op: "list", Err: err}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, coll portfolio.Collection, id uuid.UUID) (portfolio.Record, error) {
	rec, err := portfolio.NewRecord(coll)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodGet, "/collections/"+string(coll)+"/"+id.String(), nil, nil, rec); err != nil {
		return nil, &portfolio.RecordError{Collection: coll, ID: id, Op: "get", Err: err}
	}
	return rec, nil
}

func (c *Client) Create(ctx context.Context, r portfolio.Record) (portfolio.Record, error) {
	coll := r.Collection()
	body := r.Clone()
	body.SetRecordID(uuid.Nil)

	created, err := portfolio.NewRecord(coll)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodPost, "/collections/"+string(coll), nil, body, created); err != nil {
		return nil, &portfolio.RecordError{Collection: coll, Op: "create", Err: err}
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, r portfolio.Record) error {
	coll := r.Collection()
	id := r.RecordID()
	if id == uuid.Nil {
		return &portfolio.RecordError{Collection: coll, Op: "update", Err: portfolio.ErrNotFound}
	}
	if err := c.do(ctx, http.MethodPut, "/collections/"+string(coll)+"/"+id.String(), nil, r, nil); err != nil {
		return &portfolio.RecordError{Collection: coll, ID: id, Op: "update", Err: err}
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, coll portfolio.Collection, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "/collections/"+string(coll)+"/"+id.String(), nil, nil, nil); err != nil {
		return &portfolio.RecordError{Collection: coll, ID: id, Op: "delete", Err: err}
	}
	return nil
}

func (c *Client) GetSettings(ctx context.Context) (*portfolio.Settings, error) {
	var s portfolio.Settings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &s); err != nil {
		return nil, &portfolio.RecordError{Collection: portfolio.CollectionSettings, Op: "get", Err: err}
	}
	return &s, nil
}

func (c *Client) SaveSettings(ctx context.Context, s *portfolio.Settings) (*portfolio.Settings, error) {
	var saved portfolio.Settings
	if err := c.do(ctx, http.MethodPut, "/settings", nil, s, &saved); err != nil {
		return nil, &portfolio.RecordError{Collection: portfolio.CollectionSettings, ID: s.ID, Op: "save", Err: err}
	}
	return &saved, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil, nil)
}

func decodeRecord(coll portfolio.Collection, data []byte) (portfolio.Record, error) {
	rec, err := portfolio.NewRecord(coll)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("%w: decode %s row: %v", portfolio.ErrTransport, coll, err)
	}
	return rec, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1" + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request. A non-2xx response is decoded into an error that
// wraps the sentinel matching its kind.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", portfolio.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", portfolio.ErrTransport, err)
	}
	return nil
}

// ErrUnauthorized indicates the server rejected the session
var ErrUnauthorized = errors.New("admin session required")

// StatusError is a failed response
type StatusError struct {
	Status  int
	Kind    portfolio.Kind
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps the response kind back to the gateway sentinel
func (e *StatusError) Unwrap() error {
	switch e.Kind {
	case portfolio.KindNotFound:
		return portfolio.ErrNotFound
	case portfolio.KindConflict:
		return portfolio.ErrConflict
	case portfolio.KindInvalid:
		return portfolio.ErrInvalidRecord
	case api.KindBadRequest:
		return portfolio.ErrInvalidField
	case api.KindUnauthorized:
		return ErrUnauthorized
	}
	return portfolio.ErrTransport
}

func decodeError(resp *http.Response) error {
	se := &StatusError{Status: resp.StatusCode}
	var body api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil && body.Kind != "" {
		se.Kind = body.Kind
		se.Message = body.Error
		return se
	}
	se.Message = strings.TrimSpace(string(data))
	switch resp.StatusCode {
	case http.StatusNotFound:
		se.Kind = portfolio.KindNotFound
	case http.StatusConflict:
		se.Kind = portfolio.KindConflict
	case http.StatusUnauthorized:
		se.Kind = api.KindUnauthorized
	default:
		se.Kind = portfolio.KindTransport
	}
	return se
}
