package apperr

import "github.com/m-mizutani/goerr/v2"

// NotFound errors (HTTP 404)
var (
	ErrTagNotFound        = goerr.NewTag("not_found")
	ErrTagPromptNotFound  = goerr.NewTag("prompt_not_found")
	ErrTagVersionNotFound = goerr.NewTag("version_not_found")
	ErrTagAliasNotFound   = goerr.NewTag("alias_not_found")
	ErrTagTagNotFound     = goerr.NewTag("tag_not_found")
)

// InvalidArgument errors (HTTP 400)
var (
	ErrTagValidation    = goerr.NewTag("validation")
	ErrTagInvalidInput  = goerr.NewTag("invalid_input")
	ErrTagInvalidFilter = goerr.NewTag("invalid_filter")
	ErrTagInvalidToken  = goerr.NewTag("invalid_page_token")
)

// AlreadyExists errors (HTTP 409)
var (
	ErrTagAlreadyExists = goerr.NewTag("already_exists")
)

// FailedPrecondition errors (HTTP 412)
var (
	ErrTagFailedPrecondition = goerr.NewTag("failed_precondition")
)

// System errors (HTTP 500/502)
var (
	ErrTagInternal  = goerr.NewTag("internal")
	ErrTagDatabase  = goerr.NewTag("database")
	ErrTagFirestore = goerr.NewTag("firestore")
)
