package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/render"
)

// Error codes returned in the "error" field.
const (
	codeBadRequest       = "bad_request"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeConflict         = "conflict"
	codeTooLarge         = "request_too_large"
	codeUnavailable      = "store_unavailable"
	codeInternal         = "internal_error"
)

// errorResponse is the body of every error response.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	if status >= 500 && code == codeInternal {
		description = ""
	}
	writeJSON(w, status, errorResponse{Error: code, Description: description})
}

// writeStoreError maps store and render errors to responses.
func writeStoreError(w http.ResponseWriter, err error) {
	var (
		storageErr *store.StorageError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidLayout):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, store.ErrReadOnly):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, render.ErrNotIndividual):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
	case errors.As(err, &storageErr):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, storageErr.Backend+" backend failed")
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "")
	}
}

// decodeBody decodes a JSON request body into out. An empty body leaves out
// untouched.
func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeDecodeError answers a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body: "+err.Error())
}
