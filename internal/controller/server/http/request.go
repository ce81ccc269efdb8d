package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
)

const namespaceQueryParam = "namespace"

// allNamespaces selects every namespace when listing steps.
const allNamespaces = "*"

// maxRequestBodyBytes bounds the step, template and input documents a
// request may carry.
const maxRequestBodyBytes = 1 << 20

// getNamespaceParam returns the requested namespace, or the default one
// when the request names none.
func getNamespaceParam(r *http.Request) string {
	if ns := r.URL.Query().Get(namespaceQueryParam); ns != "" {
		return ns
	}
	return state.DefaultNamespace
}

type contextKey string

const (
	getStringContextKey contextKey = "get_string"
	stepIDContextKey    contextKey = "step_id"
	namespaceContextKey contextKey = "name"
)

// getString returns the message catalog selected by the request's
// Accept-Language header.
func getString(r *http.Request) i18n.GetString {
	if gs, ok := r.Context().Value(getStringContextKey).(i18n.GetString); ok {
		return gs
	}
	return i18n.Default()
}

func withGetString(ctx context.Context, gs i18n.GetString) context.Context {
	return context.WithValue(ctx, getStringContextKey, gs)
}

func decodeBody(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewResponseError(fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		}
		return NewResponseError(fmt.Errorf("failed to decode object: %w", err), http.StatusBadRequest)
	}
	return nil
}
