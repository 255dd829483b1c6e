package apperr

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// HTTPStatusFromError returns the appropriate HTTP status code based on error tags
func HTTPStatusFromError(err error) int {
	switch {
	// 404 Not Found
	case goerr.HasTag(err, ErrTagNotFound),
		goerr.HasTag(err, ErrTagPromptNotFound),
		goerr.HasTag(err, ErrTagVersionNotFound),
		goerr.HasTag(err, ErrTagAliasNotFound),
		goerr.HasTag(err, ErrTagTagNotFound):
		return http.StatusNotFound

	// 400 Bad Request
	case goerr.HasTag(err, ErrTagValidation),
		goerr.HasTag(err, ErrTagInvalidInput),
		goerr.HasTag(err, ErrTagInvalidFilter),
		goerr.HasTag(err, ErrTagInvalidToken):
		return http.StatusBadRequest

	// 409 Conflict
	case goerr.HasTag(err, ErrTagAlreadyExists):
		return http.StatusConflict

	// 412 Precondition Failed
	case goerr.HasTag(err, ErrTagFailedPrecondition):
		return http.StatusPreconditionFailed

	// 502 Bad Gateway
	case goerr.HasTag(err, ErrTagFirestore):
		return http.StatusBadGateway

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromError returns a stable machine-readable error code based on error
// tags. API clients branch on these codes, so they must never change.
func CodeFromError(err error) string {
	switch {
	case goerr.HasTag(err, ErrTagPromptNotFound):
		return "ERR_PROMPT_NOT_FOUND"
	case goerr.HasTag(err, ErrTagVersionNotFound):
		return "ERR_VERSION_NOT_FOUND"
	case goerr.HasTag(err, ErrTagAliasNotFound):
		return "ERR_ALIAS_NOT_FOUND"
	case goerr.HasTag(err, ErrTagTagNotFound):
		return "ERR_TAG_NOT_FOUND"
	case goerr.HasTag(err, ErrTagNotFound):
		return "ERR_NOT_FOUND"
	case goerr.HasTag(err, ErrTagInvalidFilter):
		return "ERR_INVALID_FILTER"
	case goerr.HasTag(err, ErrTagInvalidToken):
		return "ERR_INVALID_PAGE_TOKEN"
	case goerr.HasTag(err, ErrTagValidation), goerr.HasTag(err, ErrTagInvalidInput):
		return "ERR_INVALID_ARGUMENT"
	case goerr.HasTag(err, ErrTagAlreadyExists):
		return "ERR_ALREADY_EXISTS"
	case goerr.HasTag(err, ErrTagFailedPrecondition):
		return "ERR_FAILED_PRECONDITION"
	case goerr.HasTag(err, ErrTagDatabase):
		return "ERR_DATABASE"
	case goerr.HasTag(err, ErrTagFirestore):
		return "ERR_FIRESTORE"
	default:
		return "ERR_INTERNAL"
	}
}
