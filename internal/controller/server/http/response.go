package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

func httpWriteResponse(w http.ResponseWriter, obj interface{}) {

	code := http.StatusInternalServerError

	if respMeta, ok := obj.(internalResponseMeta); ok {
		code = respMeta.StatusCode()
	}

	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	objBytes, err := json.Marshal(obj)
	if err != nil {
		httpWriteResponseError(w, fmt.Errorf("failed to marshal JSON response: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(objBytes)
}

func httpWriteResponseError(w http.ResponseWriter, err error) {
	var (
		code int
		resp []byte
	)

	var codedErr *ResponseError
	if !errors.As(err, &codedErr) {
		code = http.StatusInternalServerError
		resp = []byte(err.Error())
	} else {
		code = codedErr.StatusCode()

		objBytes, err := json.Marshal(codedErr)
		if err != nil {
			return
		}
		resp = objBytes
		w.Header().Set("Content-Type", "application/json")
	}

	// Write the status code header.
	w.WriteHeader(code)
	_, _ = w.Write(resp)
}

// httpWriteStateError converts a state backend error into a response.
func httpWriteStateError(w http.ResponseWriter, err *state.ErrorResp) {
	httpWriteResponseError(w, NewResponseError(err.Err(), err.StatusCode()))
}

type internalResponseMeta interface {
	StatusCode() int
}

type internalResponseMetaImpl struct {
	code int
}

func newInternalResponseMeta(c int) internalResponseMetaImpl {
	return internalResponseMetaImpl{
		code: c,
	}
}

func (r internalResponseMetaImpl) StatusCode() int {
	return r.code
}

type ResponseError struct {
	ErrorBody `json:"error"`

	// Errors maps field paths to messages when a step failed validation.
	Errors *validate.Errors `json:"errors,omitempty"`
}

type ErrorBody struct {
	Msg  string `json:"message"`
	Code int    `json:"code"`
}

func NewResponseError(e error, c int) *ResponseError {
	return &ResponseError{
		ErrorBody: ErrorBody{
			Msg:  e.Error(),
			Code: c,
		},
	}
}

// NewValidationError is the 400 response for a document with field errors.
func NewValidationError(errs *validate.Errors) *ResponseError {
	resp := NewResponseError(errs.Err(), http.StatusBadRequest)
	resp.Errors = errs
	return resp
}

func (e *ResponseError) StatusCode() int { return e.Code }

func (e *ResponseError) Error() string { return e.Msg }

func (e *ResponseError) String() string { return e.Msg }
