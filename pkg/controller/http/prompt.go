package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// setAliasRequest is the body for PUT .../aliases/{alias}
type setAliasRequest struct {
	Version string `json:"version"`
}

// setTagRequest is the body for PUT .../tags/{key}
type setTagRequest struct {
	Value string `json:"value"`
}

// HandleCreatePrompt creates a new prompt
func (c *PromptController) HandleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req interfaces.CreatePromptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := c.useCases.CreatePrompt(r.Context(), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, p)
}

// HandleGetPrompt returns a prompt with its tags and aliases
func (c *PromptController) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := c.useCases.GetPrompt(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, p)
}

// HandleUpdatePrompt updates a prompt's mutable fields
func (c *PromptController) HandleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req interfaces.UpdatePromptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := c.useCases.UpdatePrompt(r.Context(), chi.URLParam(r, "name"), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, p)
}

// HandleDeletePrompt deletes a prompt and everything under it
func (c *PromptController) HandleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	if err := c.useCases.DeletePrompt(r.Context(), chi.URLParam(r, "name")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSearchPrompts returns a filtered, paginated prompt listing
func (c *PromptController) HandleSearchPrompts(w http.ResponseWriter, r *http.Request) {
	req, err := searchParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := c.useCases.SearchPrompts(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, resp)
}

// HandleCreateVersion appends a new version to a prompt
func (c *PromptController) HandleCreateVersion(w http.ResponseWriter, r *http.Request) {
	var req interfaces.CreateVersionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	v, err := c.useCases.CreateVersion(r.Context(), chi.URLParam(r, "name"), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, v)
}

// HandleGetVersion returns a specific version
func (c *PromptController) HandleGetVersion(w http.ResponseWriter, r *http.Request) {
	v, err := c.useCases.GetVersion(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, v)
}

// HandleUpdateVersion updates a version's mutable metadata
func (c *PromptController) HandleUpdateVersion(w http.ResponseWriter, r *http.Request) {
	var req interfaces.UpdateVersionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	v, err := c.useCases.UpdateVersion(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version"), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, v)
}

// HandleDeleteVersion deletes a version and any alias pointing at it
func (c *PromptController) HandleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	if err := c.useCases.DeleteVersion(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSearchVersions returns a filtered, paginated version listing
func (c *PromptController) HandleSearchVersions(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	req := &interfaces.SearchVersionsRequest{
		Filter:     params.Filter,
		MaxResults: params.MaxResults,
		PageToken:  params.PageToken,
	}

	resp, err := c.useCases.SearchVersions(r.Context(), chi.URLParam(r, "name"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, resp)
}

// HandleGetVersionByAlias resolves an alias to its target version
func (c *PromptController) HandleGetVersionByAlias(w http.ResponseWriter, r *http.Request) {
	v, err := c.useCases.GetVersionByAlias(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "alias"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, v)
}

// HandleSetAlias points an alias at a version
func (c *PromptController) HandleSetAlias(w http.ResponseWriter, r *http.Request) {
	var req setAliasRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := c.useCases.SetAlias(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "alias"), req.Version)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, p)
}

// HandleDeleteAlias removes an alias mapping
func (c *PromptController) HandleDeleteAlias(w http.ResponseWriter, r *http.Request) {
	if err := c.useCases.DeleteAlias(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "alias")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSetTag upserts an entity-scoped tag
func (c *PromptController) HandleSetTag(w http.ResponseWriter, r *http.Request) {
	var req setTagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := c.useCases.SetTag(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, p)
}

// HandleDeleteTag removes an entity-scoped tag
func (c *PromptController) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := c.useCases.DeleteTag(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "key")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSetVersionTag upserts a version-scoped tag
func (c *PromptController) HandleSetVersionTag(w http.ResponseWriter, r *http.Request) {
	var req setTagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	v, err := c.useCases.SetVersionTag(r.Context(),
		chi.URLParam(r, "name"), chi.URLParam(r, "version"), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, v)
}

// HandleDeleteVersionTag removes a version-scoped tag
func (c *PromptController) HandleDeleteVersionTag(w http.ResponseWriter, r *http.Request) {
	err := c.useCases.DeleteVersionTag(r.Context(),
		chi.URLParam(r, "name"), chi.URLParam(r, "version"), chi.URLParam(r, "key"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// searchParams extracts the common listing query parameters
func searchParams(r *http.Request) (*interfaces.SearchPromptsRequest, error) {
	req := &interfaces.SearchPromptsRequest{
		Filter:    r.URL.Query().Get("filter"),
		PageToken: r.URL.Query().Get("page_token"),
	}

	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, goerr.Wrap(err, "max_results must be an integer",
				goerr.T(apperr.ErrTagInvalidInput),
				goerr.V("max_results", raw))
		}
		req.MaxResults = n
	}

	return req, nil
}

// decodeBody decodes a JSON request body, writing an error response on
// failure. Returns false when the handler should stop.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid request body",
			goerr.T(apperr.ErrTagInvalidInput)))
		return false
	}
	return true
}
