package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	pipelinecontext "github.com/hashicorp-forge/pipeline-steps/internal/pkg/context"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/inputset"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/metrics"
	sharedstate "github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

type stepsEndpoint struct {
	state    state.State
	registry *step.Registry
	lookup   lookup.Lookup
	metrics  *metrics.Metrics
}

func (s stepsEndpoint) routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/", func(r chi.Router) {
		r.Use(namespaceCheckMiddleware(s.state))
		r.With(namespaceWildcardRejectMiddleware()).Post("/", s.create)
		r.Get("/", s.list)
	})

	router.Route("/{id}", func(r chi.Router) {
		r.Use(namespaceWildcardRejectMiddleware())
		r.Use(namespaceCheckMiddleware(s.state))
		r.Use(s.context)
		r.Delete("/", s.delete)
		r.Get("/", s.get)
		r.Put("/", s.update)
		r.Get("/form", s.form)
		r.Patch("/field", s.field)
		r.Get("/template", s.template)
		r.Post("/input-set", s.inputSet)
		r.Post("/resolve", s.resolve)
	})

	return router
}

type StepCreateReq struct {
	Step step.Config `json:"step"`
}

type StepCreateResp struct {
	Step                 *sharedstate.Step `json:"step"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) create(w http.ResponseWriter, r *http.Request) {

	var req StepCreateReq

	if err := decodeBody(r, &req); err != nil {
		httpWriteResponseError(w, err)
		return
	}
	if req.Step == nil {
		httpWriteResponseError(w, NewResponseError(errors.New("step is required"), http.StatusBadRequest))
		return
	}

	if errs := s.validate(req.Step, getString(r)); !errs.Empty() {
		httpWriteResponseError(w, NewValidationError(errs))
		return
	}

	stateResp, err := s.state.Steps().Create(&state.StepsCreateReq{Step: &sharedstate.Step{
		ID:        step.IdentifierOf(req.Step),
		Namespace: getNamespaceParam(r),
		Config:    req.Step,
	}})
	if err != nil {
		httpWriteStateError(w, err)
	} else {
		resp := StepCreateResp{
			Step:                 stateResp.Step,
			internalResponseMeta: newInternalResponseMeta(http.StatusCreated),
		}
		httpWriteResponse(w, &resp)
	}
}

type StepListResp struct {
	Steps                []*sharedstate.StepStub `json:"steps"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) list(w http.ResponseWriter, r *http.Request) {
	stateResp, err := s.state.Steps().List(&state.StepsListReq{Namespace: getNamespaceParam(r)})
	if err != nil {
		httpWriteStateError(w, err)
	} else {
		resp := StepListResp{
			Steps:                stateResp.Steps,
			internalResponseMeta: newInternalResponseMeta(http.StatusOK),
		}
		if resp.Steps == nil {
			resp.Steps = []*sharedstate.StepStub{}
		}
		httpWriteResponse(w, &resp)
	}
}

type StepDeleteResp struct {
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) delete(w http.ResponseWriter, r *http.Request) {
	_, err := s.state.Steps().Delete(&state.StepsDeleteReq{
		ID:        r.Context().Value(stepIDContextKey).(string),
		Namespace: getNamespaceParam(r),
	})
	if err != nil {
		httpWriteStateError(w, err)
	} else {
		httpWriteResponse(w, &StepDeleteResp{internalResponseMeta: newInternalResponseMeta(http.StatusOK)})
	}
}

type StepGetResp struct {
	Step                 *sharedstate.Step `json:"step"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) get(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.load(w, r)
	if !ok {
		return
	}
	httpWriteResponse(w, &StepGetResp{
		Step:                 stored,
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}

// StepUpdateReq replaces a stored step. Revision, when set, must match the
// stored revision.
type StepUpdateReq struct {
	Step     step.Config `json:"step"`
	Revision string      `json:"revision,omitempty"`
}

type StepUpdateResp struct {
	Step                 *sharedstate.Step `json:"step"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) update(w http.ResponseWriter, r *http.Request) {

	var req StepUpdateReq

	if err := decodeBody(r, &req); err != nil {
		httpWriteResponseError(w, err)
		return
	}
	if req.Step == nil {
		httpWriteResponseError(w, NewResponseError(errors.New("step is required"), http.StatusBadRequest))
		return
	}

	id := r.Context().Value(stepIDContextKey).(string)
	if identifier := step.IdentifierOf(req.Step); identifier != id {
		httpWriteResponseError(w, NewResponseError(
			fmt.Errorf("step identifier %q does not match %q", identifier, id), http.StatusBadRequest))
		return
	}

	revision, err := parseRevision(req.Revision)
	if err != nil {
		httpWriteResponseError(w, err)
		return
	}

	if errs := s.validate(req.Step, getString(r)); !errs.Empty() {
		httpWriteResponseError(w, NewValidationError(errs))
		return
	}

	stateResp, errResp := s.state.Steps().Update(&state.StepsUpdateReq{
		Step: &sharedstate.Step{
			ID:        id,
			Namespace: getNamespaceParam(r),
			Config:    req.Step,
		},
		ExpectedRevision: revision,
	})
	if errResp != nil {
		httpWriteStateError(w, errResp)
		return
	}

	httpWriteResponse(w, &StepUpdateResp{
		Step:                 stateResp.Step,
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}

type StepFormResp struct {
	Form                 *form.Form `json:"form"`
	internalResponseMeta `json:"-"`
}

// form renders the stored step. The input-set view treats the stored step
// as the template and renders it with no inputs entered.
func (s stepsEndpoint) form(w http.ResponseWriter, r *http.Request) {

	view, err := form.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		httpWriteResponseError(w, NewResponseError(err, http.StatusBadRequest))
		return
	}

	stored, ok := s.load(w, r)
	if !ok {
		return
	}

	req := step.RenderRequest{
		View:      view,
		Config:    stored.Config,
		Lookup:    s.lookup,
		GetString: getString(r),
	}
	if view == form.ViewInputSet {
		req.Template = stored.Config
		req.Config = nil
	}

	frm, err := step.Render(r.Context(), s.registry.For(stored.Config), &req)
	if err != nil {
		httpWriteResponseError(w, NewResponseError(err, http.StatusInternalServerError))
		return
	}

	httpWriteResponse(w, &StepFormResp{
		Form:                 frm,
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}

// StepFieldReq sets one field. A null value removes it.
type StepFieldReq struct {
	Path     string `json:"path"`
	Value    any    `json:"value"`
	Revision string `json:"revision,omitempty"`
}

type StepFieldResp struct {
	Step *sharedstate.Step `json:"step"`

	// Resets lists the dependent fields moved to another input mode.
	Resets []value.Reset `json:"resets"`

	// Errors is the validation state after the change. Partially edited
	// steps are stored even when invalid.
	Errors               *validate.Errors `json:"errors"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) field(w http.ResponseWriter, r *http.Request) {

	var req StepFieldReq

	if err := decodeBody(r, &req); err != nil {
		httpWriteResponseError(w, err)
		return
	}

	revision, err := parseRevision(req.Revision)
	if err != nil {
		httpWriteResponseError(w, err)
		return
	}

	stored, ok := s.load(w, r)
	if !ok {
		return
	}
	if revision.IsZero() {
		revision = stored.Revision
	}

	switch req.Path {
	case step.PathIdentifier, step.PathType:
		httpWriteResponseError(w, NewResponseError(
			fmt.Errorf("field %q cannot be changed", req.Path), http.StatusBadRequest))
		return
	}

	cfg := step.Clone(stored.Config)
	def := s.registry.For(cfg)

	resets, err := step.ApplyChange(def, cfg, req.Path, req.Value)
	if err != nil {
		httpWriteResponseError(w, NewResponseError(err, http.StatusBadRequest))
		return
	}

	stored.Config = cfg

	stateResp, errResp := s.state.Steps().Update(&state.StepsUpdateReq{
		Step:             stored,
		ExpectedRevision: revision,
	})
	if errResp != nil {
		httpWriteStateError(w, errResp)
		return
	}

	if resets == nil {
		resets = []value.Reset{}
	}

	httpWriteResponse(w, &StepFieldResp{
		Step:                 stateResp.Step,
		Resets:               resets,
		Errors:               s.registry.Validate(cfg, getString(r)),
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}

type StepTemplateResp struct {
	Template             step.Config `json:"template"`
	RuntimePaths         []string    `json:"runtime_paths"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) template(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.load(w, r)
	if !ok {
		return
	}

	resp := StepTemplateResp{
		Template:             inputset.Template(stored.Config),
		RuntimePaths:         inputset.RuntimePaths(stored.Config),
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	}
	if resp.RuntimePaths == nil {
		resp.RuntimePaths = []string{}
	}

	httpWriteResponse(w, &resp)
}

type StepInputSetReq struct {
	Inputs step.Config `json:"inputs"`
}

type StepInputSetResp struct {
	// Step is the stored step with the inputs merged in.
	Step                 step.Config `json:"step"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) inputSet(w http.ResponseWriter, r *http.Request) {

	var req StepInputSetReq

	if err := decodeBody(r, &req); err != nil {
		httpWriteResponseError(w, err)
		return
	}

	stored, ok := s.load(w, r)
	if !ok {
		return
	}

	gs := getString(r)
	def := s.registry.For(stored.Config)

	errs := inputset.Validate(def, stored.Config, req.Inputs, gs)
	s.metrics.ObserveValidation(def.Type(), errs.Empty())
	if !errs.Empty() {
		httpWriteResponseError(w, NewValidationError(errs))
		return
	}

	merged, _ := inputset.Merge(stored.Config, req.Inputs, gs)

	httpWriteResponse(w, &StepInputSetResp{
		Step:                 merged,
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}

type PipelineContextReq struct {
	Identifier string         `json:"identifier"`
	Name       string         `json:"name"`
	SequenceID int            `json:"sequence_id"`
	Variables  map[string]any `json:"variables"`
}

// StepResolveReq previews the stored step with its expressions evaluated.
// Inputs, when given, are merged first as an input set.
type StepResolveReq struct {
	Inputs    step.Config         `json:"inputs,omitempty"`
	Variables map[string]any      `json:"variables,omitempty"`
	Pipeline  *PipelineContextReq `json:"pipeline,omitempty"`
	Strict    bool                `json:"strict"`
}

type StepResolveResp struct {
	Step                 step.Config `json:"step"`
	internalResponseMeta `json:"-"`
}

func (s stepsEndpoint) resolve(w http.ResponseWriter, r *http.Request) {

	var req StepResolveReq

	if err := decodeBody(r, &req); err != nil {
		httpWriteResponseError(w, err)
		return
	}

	stored, ok := s.load(w, r)
	if !ok {
		return
	}

	gs := getString(r)
	doc := stored.Config

	if req.Inputs != nil {
		merged, errs := inputset.Merge(stored.Config, req.Inputs, gs)
		if !errs.Empty() {
			httpWriteResponseError(w, NewValidationError(errs))
			return
		}
		doc = merged
	}

	pipeline := &pipelinecontext.PipelineContext{}
	if req.Pipeline != nil {
		pipeline = &pipelinecontext.PipelineContext{
			Identifier: req.Pipeline.Identifier,
			Name:       req.Pipeline.Name,
			SequenceID: req.Pipeline.SequenceID,
			Variables:  req.Pipeline.Variables,
		}
	}

	resolved, errs := pipelinecontext.New(pipeline, req.Variables).ForStep(doc).Resolve(doc, req.Strict, gs)
	if !errs.Empty() {
		httpWriteResponseError(w, NewValidationError(errs))
		return
	}

	httpWriteResponse(w, &StepResolveResp{
		Step:                 resolved,
		internalResponseMeta: newInternalResponseMeta(http.StatusOK),
	})
}

// validate normalizes cfg in place and validates it, counting the outcome.
func (s stepsEndpoint) validate(cfg step.Config, gs i18n.GetString) *validate.Errors {
	errs := validateStep(s.registry, cfg, nil, gs)
	s.metrics.ObserveValidation(step.TypeOf(cfg), errs.Empty())
	return errs
}

// load reads the step named in the URL, writing the error response when it
// cannot.
func (s stepsEndpoint) load(w http.ResponseWriter, r *http.Request) (*sharedstate.Step, bool) {
	stateResp, err := s.state.Steps().Get(&state.StepsGetReq{
		ID:        r.Context().Value(stepIDContextKey).(string),
		Namespace: getNamespaceParam(r),
	})
	if err != nil {
		httpWriteStateError(w, err)
		return nil, false
	}
	return stateResp.Step, true
}

func (s stepsEndpoint) context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		var id string

		if id = chi.URLParam(r, "id"); id == "" {
			httpWriteResponseError(w, NewResponseError(errors.New("step not found"), http.StatusNotFound))
			return
		}

		ctx := context.WithValue(r.Context(), stepIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseRevision(s string) (ulid.ULID, error) {
	if s == "" {
		return ulid.ULID{}, nil
	}
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, NewResponseError(fmt.Errorf("invalid revision: %w", err), http.StatusBadRequest)
	}
	return id, nil
}
