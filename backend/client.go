// Package backend is the REST client for the content backend. Every call
// returns a structured Result and one of the typed errors in errors.go.
package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shyamgroup/backoffice/logger"
)

const defaultTimeout = 30 * time.Second

type headerKey struct{}

// WithHeader returns a context whose requests carry h (typically the
// session's bearer header). Content-Type in h is ignored: the client sets it
// per payload so multipart boundaries are never overwritten.
func WithHeader(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, headerKey{}, h)
}

func headerFrom(ctx context.Context) http.Header {
	h, _ := ctx.Value(headerKey{}).(http.Header)
	return h
}

// Result is the uniform outcome of a backend call.
type Result struct {
	OK      bool
	Status  int
	Message string
	Data    []Record
	Body    []byte
}

// Decode unmarshals the raw response body into v.
func (r *Result) Decode(v any) error {
	if len(r.Body) == 0 {
		return &ParseError{Status: r.Status, Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &ParseError{Status: r.Status, Err: err}
	}
	return nil
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to one backend base URL.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Base() string {
	return c.base
}

// URL joins path onto the base URL.
func (c *Client) URL(path string, query url.Values) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Result, error) {
	return c.do(ctx, http.MethodGet, c.URL(path, query), nil, "")
}

func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Result, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body)
}

func (c *Client) PutJSON(ctx context.Context, path string, body any) (*Result, error) {
	return c.sendJSON(ctx, http.MethodPut, path, body)
}

func (c *Client) PatchJSON(ctx context.Context, path string, body any) (*Result, error) {
	return c.sendJSON(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE; a nil body sends no payload.
func (c *Client) Delete(ctx context.Context, path string, body any) (*Result, error) {
	if body == nil {
		return c.do(ctx, http.MethodDelete, c.URL(path, nil), nil, "")
	}
	return c.sendJSON(ctx, http.MethodDelete, path, body)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *Form) (*Result, error) {
	return c.sendMultipart(ctx, http.MethodPost, path, form)
}

func (c *Client) PutMultipart(ctx context.Context, path string, form *Form) (*Result, error) {
	return c.sendMultipart(ctx, http.MethodPut, path, form)
}

// Ping reports whether the backend answers. Any status below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/", nil), nil)
	if err != nil {
		return &NetworkError{Op: "GET /", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: "GET /", Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return &ServerError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any) (*Result, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, c.URL(path, nil), bytes.NewReader(b), "application/json")
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, form *Form) (*Result, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, c.URL(path, nil), body, contentType)
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string) (*Result, error) {
	op := method + " " + target
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	for k, vs := range headerFrom(ctx) {
		if http.CanonicalHeaderKey(k) == "Content-Type" {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warningf("backend %s failed: %v", op, err)
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	logger.Debugf("backend %s -> %d in %v", op, resp.StatusCode, time.Since(start))
	return parseResponse(resp.StatusCode, raw)
}

func parseResponse(status int, raw []byte) (*Result, error) {
	res := &Result{
		OK:     status >= 200 && status < 300,
		Status: status,
		Body:   raw,
	}
	trimmed := bytes.TrimSpace(raw)

	var parseErr error
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '[':
		var list []Record
		if err := json.Unmarshal(trimmed, &list); err != nil {
			parseErr = err
		} else {
			res.Data = list
		}
	default:
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			parseErr = err
			break
		}
		res.Message = env.Message
		if res.Message == "" {
			res.Message = env.Error
		}
		if d := bytes.TrimSpace(env.Data); len(d) > 0 && d[0] == '[' {
			if err := json.Unmarshal(d, &res.Data); err != nil {
				parseErr = err
			}
		}
	}

	if !res.OK {
		return res, &ServerError{Status: status, Msg: res.Message}
	}
	if parseErr != nil {
		return res, &ParseError{Status: status, Err: parseErr}
	}
	if res.Data == nil {
		res.Data = []Record{}
	}
	return res, nil
}
