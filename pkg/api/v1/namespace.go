package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Namespace scopes stored steps. Step IDs only need to be unique within one.
type Namespace struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreateTime  time.Time `json:"create_time,omitzero"`
}

// NamespaceStub is the listing form of a namespace.
type NamespaceStub struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreateTime  time.Time `json:"create_time"`

	// Steps is how many steps the namespace holds. A namespace can only be
	// deleted once this is zero.
	Steps int `json:"steps"`
}

type Namespaces struct {
	client *Client
}

func (c *Client) Namespaces() *Namespaces {
	return &Namespaces{client: c}
}

func namespacePath(name string) string {
	if name == "" {
		return "/v1/namespaces"
	}
	return "/v1/namespaces/" + url.PathEscape(name)
}

func (n *Namespaces) do(ctx context.Context, method, path string, body, out any) (*Response, error) {
	httpReq, err := n.client.NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	return n.client.Do(ctx, httpReq, out)
}

type NamespaceCreateReq struct {
	Namespace *Namespace `json:"namespace"`
}

type NamespaceCreateResp struct {
	Namespace *Namespace `json:"namespace"`
}

func (n *Namespaces) Create(ctx context.Context, req *NamespaceCreateReq) (*NamespaceCreateResp, *Response, error) {
	var resp NamespaceCreateResp
	httpResp, err := n.do(ctx, http.MethodPost, namespacePath(""), req, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

// NamespaceDeleteReq names the namespace to delete. The server refuses the
// default namespace and any namespace that still holds steps.
type NamespaceDeleteReq struct {
	Name string `json:"name"`
}

type NamespaceDeleteResp struct{}

func (n *Namespaces) Delete(ctx context.Context, req *NamespaceDeleteReq) (*Response, error) {
	return n.do(ctx, http.MethodDelete, namespacePath(req.Name), nil, nil)
}

type NamespaceGetReq struct {
	Name string `json:"name"`
}

type NamespaceGetResp struct {
	Namespace *Namespace `json:"namespace"`
}

func (n *Namespaces) Get(ctx context.Context, req *NamespaceGetReq) (*NamespaceGetResp, *Response, error) {
	var resp NamespaceGetResp
	httpResp, err := n.do(ctx, http.MethodGet, namespacePath(req.Name), nil, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type NamespaceListReq struct{}

type NamespaceListResp struct {
	Namespaces []*NamespaceStub `json:"namespaces"`
}

func (n *Namespaces) List(ctx context.Context, _ *NamespaceListReq) (*NamespaceListResp, *Response, error) {
	var resp NamespaceListResp
	httpResp, err := n.do(ctx, http.MethodGet, namespacePath(""), nil, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}
