package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/utils/errors"
)

// respondJSON writes a JSON response body with the given status code
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errors.Handle(r.Context(), goerr.Wrap(err, "failed to write response body"))
	}
}
