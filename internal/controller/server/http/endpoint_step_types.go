package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
)

type stepTypesEndpoint struct {
	registry *step.Registry
	lookup   lookup.Lookup
}

func (s stepTypesEndpoint) routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", s.list)
	router.Get("/{type}", s.get)
	return router
}

type StepTypeListResp struct {
	StepTypes            []*step.Info `json:"step_types"`
	internalResponseMeta `json:"-"`
}

func (s stepTypesEndpoint) list(w http.ResponseWriter, r *http.Request) {
	gs := getString(r)

	resp := StepTypeListResp{
		StepTypes:            []*step.Info{},
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	}
	for _, def := range s.registry.Definitions() {
		resp.StepTypes = append(resp.StepTypes, step.Describe(def, gs))
	}

	httpWriteResponse(w, &resp)
}

type StepTypeGetResp struct {
	StepType *step.Info `json:"step_type"`

	// Form is the edit view of the type's defaults.
	Form                 *form.Form `json:"form"`
	internalResponseMeta `json:"-"`
}

func (s stepTypesEndpoint) get(w http.ResponseWriter, r *http.Request) {
	stepType := chi.URLParam(r, "type")

	def, ok := s.registry.Lookup(stepType)
	if !ok {
		httpWriteResponseError(w, NewResponseError(
			fmt.Errorf("step type %q not found", stepType), http.StatusNotFound))
		return
	}

	gs := getString(r)

	frm, err := step.Render(r.Context(), def, &step.RenderRequest{
		View:      form.ViewEdit,
		Config:    def.Defaults(),
		Lookup:    s.lookup,
		GetString: gs,
	})
	if err != nil {
		httpWriteResponseError(w, NewResponseError(err, http.StatusInternalServerError))
		return
	}

	httpWriteResponse(w, &StepTypeGetResp{
		StepType:             step.Describe(def, gs),
		Form:                 frm,
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}
