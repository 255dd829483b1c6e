package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
	"github.com/m-kurita/promptreg/pkg/utils/errors"
)

// errorResponse is the JSON body returned for failed requests
type errorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// handleError maps an error to an HTTP status via its tags and writes a
// JSON error body
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status := apperr.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		errors.Handle(r.Context(), err)
	} else {
		ctxlog.From(r.Context()).Debug("request failed",
			"error", err,
			"status", status,
			"path", r.URL.Path,
			"method", r.Method,
		)
	}

	resp := errorResponse{
		Error:   err.Error(),
		Code:    apperr.CodeFromError(err),
		Details: errorDetails(err),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		errors.Handle(r.Context(), goerr.Wrap(encErr, "failed to write error response"))
	}
}

// errorDetails pulls the identifier values attached to the error chain so
// clients can see which prompt, version, or alias the error refers to
func errorDetails(err error) map[string]string {
	details := make(map[string]string)

	if name, ok := goerr.GetTypedValue(err, apperr.PromptNameKey); ok {
		details["name"] = name
	}
	if version, ok := goerr.GetTypedValue(err, apperr.VersionKey); ok {
		details["version"] = version
	}
	if alias, ok := goerr.GetTypedValue(err, apperr.AliasKey); ok {
		details["alias"] = alias
	}
	if key, ok := goerr.GetTypedValue(err, apperr.TagKeyKey); ok {
		details["tag_key"] = key
	}

	if len(details) == 0 {
		return nil
	}
	return details
}
