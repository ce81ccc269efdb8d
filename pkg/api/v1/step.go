package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"
)

// Step is a step document as authored: identifier, name, type, timeout and
// a type specific spec.
type Step = map[string]any

// StepRecord is a stored step.
type StepRecord struct {
	ID         string    `json:"id"`
	Namespace  string    `json:"namespace"`
	Config     Step      `json:"config"`
	Revision   string    `json:"revision"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

type StepStub struct {
	ID         string    `json:"id"`
	Namespace  string    `json:"namespace"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Revision   string    `json:"revision"`
	UpdateTime time.Time `json:"update_time"`
}

type Form struct {
	View        string            `json:"view"`
	StepType    string            `json:"step_type"`
	Fields      []*FormField      `json:"fields"`
	Variables   []*FormVariable   `json:"variables"`
	FetchErrors []*FetchError     `json:"fetch_errors"`
	Errors      map[string]string `json:"errors"`
}

type FormField struct {
	Path         string        `json:"path"`
	Label        string        `json:"label"`
	Kind         string        `json:"kind"`
	Required     bool          `json:"required"`
	Value        any           `json:"value"`
	Default      any           `json:"default"`
	InputType    string        `json:"input_type"`
	AllowedTypes []string      `json:"allowed_types"`
	Options      []*FormOption `json:"options"`
	Disabled     bool          `json:"disabled"`
	Error        string        `json:"error"`
}

type FormOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FormVariable struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

type FetchError struct {
	Source    string `json:"source"`
	Path      string `json:"path"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Reset is a dependent field that was moved to another input mode by a
// field change.
type Reset struct {
	Path string `json:"path"`
	From string `json:"from"`
	To   string `json:"to"`
}

type Steps struct {
	client *Client
}

func (c *Client) Steps() *Steps {
	return &Steps{client: c}
}

// do runs one namespaced request against the steps API.
func (s *Steps) do(ctx context.Context, method, path, namespace string, body, out any) (*Response, error) {
	httpReq, err := s.client.NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	httpReq.SetNamespace(s.client, namespace)
	return s.client.Do(ctx, httpReq, out)
}

func stepPath(id string, suffix ...string) string {
	p := "/v1/steps/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

type StepCreateReq struct {
	Namespace string `json:"-"`
	Step      Step   `json:"step"`
}

type StepCreateResp struct {
	Step *StepRecord `json:"step"`
}

func (s *Steps) Create(ctx context.Context, req *StepCreateReq) (*StepCreateResp, *Response, error) {
	var resp StepCreateResp
	httpResp, err := s.do(ctx, http.MethodPost, "/v1/steps", req.Namespace, req, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type StepDeleteReq struct {
	ID        string
	Namespace string
}

func (s *Steps) Delete(ctx context.Context, req *StepDeleteReq) (*Response, error) {
	return s.do(ctx, http.MethodDelete, stepPath(req.ID), req.Namespace, nil, nil)
}

type StepGetReq struct {
	ID        string
	Namespace string
}

type StepGetResp struct {
	Step *StepRecord `json:"step"`
}

func (s *Steps) Get(ctx context.Context, req *StepGetReq) (*StepGetResp, *Response, error) {
	var resp StepGetResp
	httpResp, err := s.do(ctx, http.MethodGet, stepPath(req.ID), req.Namespace, nil, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type StepListReq struct {
	Namespace string
}

type StepListResp struct {
	Steps []*StepStub `json:"steps"`
}

func (s *Steps) List(ctx context.Context, req *StepListReq) (*StepListResp, *Response, error) {
	var resp StepListResp
	httpResp, err := s.do(ctx, http.MethodGet, "/v1/steps", req.Namespace, nil, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type StepUpdateReq struct {
	Namespace string `json:"-"`
	Step      Step   `json:"step"`

	// Revision, when set, makes the update fail if the stored step changed
	// since it was read.
	Revision string `json:"revision,omitempty"`
}

type StepUpdateResp struct {
	Step *StepRecord `json:"step"`
}

func (s *Steps) Update(ctx context.Context, req *StepUpdateReq) (*StepUpdateResp, *Response, error) {
	id, _ := req.Step["identifier"].(string)
	if id == "" {
		return nil, nil, errors.New("step identifier is required")
	}

	var resp StepUpdateResp
	httpResp, err := s.do(ctx, http.MethodPut, stepPath(id), req.Namespace, req, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type StepFormReq struct {
	ID        string
	Namespace string

	// View is edit, input-set or variables. Empty means edit.
	View string
}

type StepFormResp struct {
	Form *Form `json:"form"`
}

func (s *Steps) Form(ctx context.Context, req *StepFormReq) (*StepFormResp, *Response, error) {
	httpReq, err := s.client.NewRequest(http.MethodGet, stepPath(req.ID, "form"), nil)
	if err != nil {
		return nil, nil, err
	}
	httpReq.SetNamespace(s.client, req.Namespace).SetQuery("view", req.View)

	var resp StepFormResp
	httpResp, err := s.client.Do(ctx, httpReq, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type StepSetFieldReq struct {
	ID        string `json:"-"`
	Namespace string `json:"-"`
	Path      string `json:"path"`

	// Value is written at Path. Nil removes the field.
	Value    any    `json:"value"`
	Revision string `json:"revision,omitempty"`
}

type StepSetFieldResp struct {
	Step   *StepRecord       `json:"step"`
	Resets []*Reset          `json:"resets"`
	Errors map[string]string `json:"errors"`
}

func (s *Steps) SetField(ctx context.Context, req *StepSetFieldReq) (*StepSetFieldResp, *Response, error) {
	var resp StepSetFieldResp
	httpResp, err := s.do(ctx, http.MethodPatch, stepPath(req.ID, "field"), req.Namespace, req, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type StepTemplateReq struct {
	ID        string
	Namespace string
}

type StepTemplateResp struct {
	Template     Step     `json:"template"`
	RuntimePaths []string `json:"runtime_paths"`
}

func (s *Steps) Template(ctx context.Context, req *StepTemplateReq) (*StepTemplateResp, *Response, error) {
	var resp StepTemplateResp
	httpResp, err := s.do(ctx, http.MethodGet, stepPath(req.ID, "template"), req.Namespace, nil, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type StepInputSetReq struct {
	ID        string `json:"-"`
	Namespace string `json:"-"`
	Inputs    Step   `json:"inputs"`
}

type StepInputSetResp struct {
	Step Step `json:"step"`
}

func (s *Steps) InputSet(ctx context.Context, req *StepInputSetReq) (*StepInputSetResp, *Response, error) {
	var resp StepInputSetResp
	httpResp, err := s.do(ctx, http.MethodPost, stepPath(req.ID, "input-set"), req.Namespace, req, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

type PipelineContext struct {
	Identifier string         `json:"identifier,omitempty"`
	Name       string         `json:"name,omitempty"`
	SequenceID int            `json:"sequence_id,omitempty"`
	Variables  map[string]any `json:"variables,omitempty"`
}

type StepResolveReq struct {
	ID        string           `json:"-"`
	Namespace string           `json:"-"`
	Inputs    Step             `json:"inputs,omitempty"`
	Variables map[string]any   `json:"variables,omitempty"`
	Pipeline  *PipelineContext `json:"pipeline,omitempty"`
	Strict    bool             `json:"strict"`
}

type StepResolveResp struct {
	Step Step `json:"step"`
}

func (s *Steps) Resolve(ctx context.Context, req *StepResolveReq) (*StepResolveResp, *Response, error) {
	var resp StepResolveResp
	httpResp, err := s.do(ctx, http.MethodPost, stepPath(req.ID, "resolve"), req.Namespace, req, &resp)
	if err != nil {
		return nil, httpResp, err
	}
	return &resp, httpResp, nil
}

// ParseStepFile reads a YAML or JSON step document. A document whose only
// key is "step" is unwrapped, so both bare steps and pipeline style
// "step:" entries are accepted.
func ParseStepFile(path string) (Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported step file extension %q", ext)
	}

	return ParseStep(data)
}

// ParseStep decodes a YAML or JSON step document.
func ParseStep(data []byte) (Step, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse step: %w", err)
	}

	var doc Step
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse step: %w", err)
	}
	if doc == nil {
		return nil, errors.New("failed to parse step: document is empty")
	}

	if inner, ok := doc["step"].(map[string]any); ok && len(doc) == 1 {
		doc = inner
	}

	return doc, nil
}
