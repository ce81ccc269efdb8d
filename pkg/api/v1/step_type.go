package api

import (
	"context"
	"net/http"
	"net/url"
)

type StepType struct {
	Type            string `json:"type"`
	Name            string `json:"name"`
	Icon            string `json:"icon"`
	Category        string `json:"category"`
	RequiresTimeout bool   `json:"requires_timeout"`
	Defaults        Step   `json:"defaults"`
}

type StepTypes struct {
	client *Client
}

func (c *Client) StepTypes() *StepTypes {
	return &StepTypes{client: c}
}

type StepTypeListResp struct {
	StepTypes []*StepType `json:"step_types"`
}

func (s *StepTypes) List(ctx context.Context) (*StepTypeListResp, *Response, error) {

	var resp StepTypeListResp

	httpReq, err := s.client.NewRequest(http.MethodGet, "/v1/step-types", nil)
	if err != nil {
		return nil, nil, err
	}

	httpResp, err := s.client.Do(ctx, httpReq, &resp)
	if err != nil {
		return nil, httpResp, err
	}

	return &resp, httpResp, nil
}

type StepTypeGetResp struct {
	StepType *StepType `json:"step_type"`
	Form     *Form     `json:"form"`
}

func (s *StepTypes) Get(ctx context.Context, stepType string) (*StepTypeGetResp, *Response, error) {

	var resp StepTypeGetResp

	httpReq, err := s.client.NewRequest(http.MethodGet, "/v1/step-types/"+url.PathEscape(stepType), nil)
	if err != nil {
		return nil, nil, err
	}

	httpResp, err := s.client.Do(ctx, httpReq, &resp)
	if err != nil {
		return nil, httpResp, err
	}

	return &resp, httpResp, nil
}

type ValidateReq struct {
	Step Step `json:"step"`

	// Template, when set, validates Step as an input set for it.
	Template Step `json:"template,omitempty"`
}

type ValidateResp struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validate checks a step document without storing it.
func (c *Client) Validate(ctx context.Context, req *ValidateReq) (*ValidateResp, *Response, error) {

	var resp ValidateResp

	httpReq, err := c.NewRequest(http.MethodPost, "/v1/validate", req)
	if err != nil {
		return nil, nil, err
	}

	httpResp, err := c.Do(ctx, httpReq, &resp)
	if err != nil {
		return nil, httpResp, err
	}

	return &resp, httpResp, nil
}
