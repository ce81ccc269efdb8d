package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	sharedstate "github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
)

type namespacesEndpoint struct {
	state state.State
}

func (n namespacesEndpoint) routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/", func(r chi.Router) {
		r.Post("/", n.create)
		r.Get("/", n.list)
	})

	router.Route("/{name}", func(r chi.Router) {
		r.Use(n.context)
		r.Delete("/", n.delete)
		r.Get("/", n.get)
	})

	return router
}

type NamespaceCreateReq struct {
	Namespace *sharedstate.Namespace `json:"namespace"`
}

type NamespaceCreateResp struct {
	Namespace            *sharedstate.Namespace `json:"namespace"`
	internalResponseMeta `json:"-"`
}

func (n namespacesEndpoint) create(w http.ResponseWriter, r *http.Request) {

	var req NamespaceCreateReq

	if err := decodeBody(r, &req); err != nil {
		httpWriteResponseError(w, err)
		return
	}

	if req.Namespace == nil || req.Namespace.ID == "" {
		httpWriteResponseError(w, NewResponseError(errors.New("namespace id is required"), http.StatusBadRequest))
		return
	}
	if req.Namespace.ID == allNamespaces {
		httpWriteResponseError(w, NewResponseError(errors.New("wildcard namespace not allowed here"), http.StatusBadRequest))
		return
	}

	_, err := n.state.Namespaces().Create(&state.NamespacesCreateReq{Namespace: req.Namespace})
	if err != nil {
		httpWriteStateError(w, err)
	} else {
		resp := NamespaceCreateResp{
			Namespace:            req.Namespace,
			internalResponseMeta: newInternalResponseMeta(http.StatusCreated),
		}
		httpWriteResponse(w, &resp)
	}
}

type NamespaceDeleteResp struct {
	internalResponseMeta `json:"-"`
}

func (n namespacesEndpoint) delete(w http.ResponseWriter, r *http.Request) {

	ns := r.Context().Value(namespaceContextKey).(string)

	if ns == state.DefaultNamespace {
		respErr := NewResponseError(
			errors.New("cannot delete default namespace"),
			http.StatusBadRequest,
		)
		httpWriteResponseError(w, respErr)
		return
	}

	_, err := n.state.Namespaces().Delete(&state.NamespacesDeleteReq{Name: ns})
	if err != nil {
		httpWriteStateError(w, err)
	} else {
		resp := NamespaceDeleteResp{
			internalResponseMeta: newInternalResponseMeta(http.StatusOK),
		}
		httpWriteResponse(w, &resp)
	}
}

type NamespaceGetResp struct {
	Namespace            *sharedstate.Namespace `json:"namespace"`
	internalResponseMeta `json:"-"`
}

func (n namespacesEndpoint) get(w http.ResponseWriter, r *http.Request) {

	ns := r.Context().Value(namespaceContextKey).(string)

	stateResp, err := n.state.Namespaces().Get(&state.NamespacesGetReq{Name: ns})
	if err != nil {
		httpWriteStateError(w, err)
	} else {
		resp := NamespaceGetResp{
			Namespace:            stateResp.Namespace,
			internalResponseMeta: newInternalResponseMeta(http.StatusOK),
		}
		httpWriteResponse(w, &resp)
	}
}

type NamespaceListResp struct {
	Namespaces           []*sharedstate.NamespaceStub `json:"namespaces"`
	internalResponseMeta `json:"-"`
}

func (n namespacesEndpoint) list(w http.ResponseWriter, _ *http.Request) {
	stateResp, err := n.state.Namespaces().List(&state.NamespacesListReq{})
	if err != nil {
		httpWriteStateError(w, err)
	} else {
		resp := NamespaceListResp{
			Namespaces:           stateResp.Namespaces,
			internalResponseMeta: newInternalResponseMeta(http.StatusOK),
		}
		httpWriteResponse(w, &resp)
	}
}

func (n namespacesEndpoint) context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		var ns string

		if ns = chi.URLParam(r, "name"); ns == "" {
			httpWriteResponseError(w, NewResponseError(errors.New("namespace not found"), http.StatusNotFound))
			return
		}

		ctx := context.WithValue(r.Context(), namespaceContextKey, ns)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
