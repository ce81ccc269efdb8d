package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
)

// HTTP fetches options from a platform API exposing
// GET /v1/lookups/{kind} with the scope as query parameters.
type HTTP struct {
	client *resty.Client
	logger *zap.Logger
}

type optionsResp struct {
	Options []form.Option `json:"options"`
}

func NewHTTP(addr, token string, timeout time.Duration, logger *zap.Logger) *HTTP {
	client := resty.New().
		SetBaseURL(strings.TrimRight(addr, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if token != "" {
		client.SetAuthToken(token)
	}

	return &HTTP{client: client, logger: logger}
}

func (h *HTTP) Options(ctx context.Context, req *Request) ([]form.Option, error) {

	var result optionsResp

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("kind", string(req.Kind)).
		SetQueryParams(req.Scope).
		SetResult(&result).
		Get("/v1/lookups/{kind}")
	if err != nil {
		h.logger.Warn("lookup request failed",
			zap.String("kind", string(req.Kind)), zap.Error(err))
		return nil, &Error{Kind: req.Kind, Msg: err.Error()}
	}

	if resp.IsError() {
		h.logger.Warn("lookup request returned error status",
			zap.String("kind", string(req.Kind)), zap.Int("status", resp.StatusCode()))
		return nil, &Error{
			Kind:       req.Kind,
			StatusCode: resp.StatusCode(),
			Msg:        strings.TrimSpace(resp.String()),
		}
	}

	h.logger.Debug("lookup request succeeded",
		zap.String("kind", string(req.Kind)), zap.Int("options", len(result.Options)))

	return result.Options, nil
}
