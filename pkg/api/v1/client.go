// Package api is the Go client of the pipeline-steps HTTP API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultNamespace = "default"

type Config struct {
	Address   string
	Namespace string
	Timeout   time.Duration

	// Language is sent as Accept-Language and selects the language of
	// labels and validation messages.
	Language string
}

func DefaultConfig() *Config {
	return &Config{
		Address:   "http://127.0.0.1:8080",
		Namespace: DefaultNamespace,
		Timeout:   30 * time.Second,
	}
}

type Client struct {
	config *Config
	http   *resty.Client
}

func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Address, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	if cfg.Language != "" {
		httpClient.SetHeader("Accept-Language", cfg.Language)
	}

	return &Client{config: cfg, http: httpClient}
}

// Namespace is the namespace requests are scoped to when they name none.
func (c *Client) Namespace() string {
	if c.config.Namespace == "" {
		return DefaultNamespace
	}
	return c.config.Namespace
}

type Request struct {
	method string
	path   string
	body   any
	query  url.Values
}

func (c *Client) NewRequest(method, path string, body any) (*Request, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("request path %q must be absolute", path)
	}
	return &Request{method: method, path: path, body: body, query: url.Values{}}, nil
}

// SetNamespace scopes the request to ns, or to the client's namespace when
// ns is empty.
func (r *Request) SetNamespace(c *Client, ns string) *Request {
	if ns == "" {
		ns = c.Namespace()
	}
	r.query.Set("namespace", ns)
	return r
}

func (r *Request) SetQuery(key, value string) *Request {
	if value != "" {
		r.query.Set(key, value)
	}
	return r
}

type Response struct {
	StatusCode int
	Header     http.Header
}

// Do sends req and decodes a successful response body into out, which may
// be nil. Error responses are returned as *ResponseError.
func (c *Client) Do(ctx context.Context, req *Request, out any) (*Response, error) {

	var errBody ResponseError

	r := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(req.query).
		SetError(&errBody)

	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}
	if out != nil {
		r.SetResult(out)
	}

	httpResp, err := r.Execute(req.method, req.path)
	if err != nil {
		return nil, err
	}

	resp := &Response{StatusCode: httpResp.StatusCode(), Header: httpResp.Header()}

	if httpResp.IsError() {
		if errBody.Code == 0 {
			errBody.ErrorBody = ErrorBody{
				Msg:  strings.TrimSpace(httpResp.String()),
				Code: httpResp.StatusCode(),
			}
		}
		return resp, &errBody
	}

	return resp, nil
}

type ResponseError struct {
	ErrorBody `json:"error"`

	// Errors maps field paths to messages when a step failed validation.
	Errors map[string]string `json:"errors,omitempty"`
}

type ErrorBody struct {
	Msg  string `json:"message"`
	Code int    `json:"code"`
}

func (e *ResponseError) StatusCode() int { return e.Code }

func (e *ResponseError) Error() string {
	if len(e.Errors) == 0 {
		return e.Msg
	}

	paths := make([]string, 0, len(e.Errors))
	for p := range e.Errors {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+": "+e.Errors[p])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ResponseError) String() string { return e.Error() }
