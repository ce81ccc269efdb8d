package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/inputset"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/metrics"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

type validateEndpoint struct {
	registry *step.Registry
	metrics  *metrics.Metrics
}

func (v validateEndpoint) routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", v.validate)
	return router
}

// ValidateReq validates Step on its own, or as an input set against
// Template when one is given.
type ValidateReq struct {
	Step     step.Config `json:"step"`
	Template step.Config `json:"template,omitempty"`
}

type ValidateResp struct {
	Valid                bool             `json:"valid"`
	Errors               *validate.Errors `json:"errors"`
	internalResponseMeta `json:"-"`
}

func (v validateEndpoint) validate(w http.ResponseWriter, r *http.Request) {

	var req ValidateReq

	if err := decodeBody(r, &req); err != nil {
		httpWriteResponseError(w, err)
		return
	}
	if req.Step == nil {
		httpWriteResponseError(w, NewResponseError(errors.New("step is required"), http.StatusBadRequest))
		return
	}

	errs := validateStep(v.registry, req.Step, req.Template, getString(r))
	v.metrics.ObserveValidation(step.TypeOf(req.Step), errs.Empty())

	httpWriteResponse(w, &ValidateResp{
		Valid:                errs.Empty(),
		Errors:               errs,
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}

// validateStep normalizes cfg in place and validates it. With a template,
// cfg holds input set values and only the template's runtime paths are
// checked.
func validateStep(registry *step.Registry, cfg, tpl step.Config, gs i18n.GetString) *validate.Errors {
	if tpl != nil {
		def := registry.For(tpl)
		return inputset.Validate(def, tpl, cfg, gs)
	}

	step.Normalize(registry.For(cfg), cfg)
	return registry.Validate(cfg, gs)
}
