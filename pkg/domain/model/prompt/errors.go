package prompt

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// Error definitions for prompt-related operations
var (
	// ErrPromptNotFound is returned when a requested prompt cannot be found
	ErrPromptNotFound = goerr.New("prompt not found", goerr.T(apperr.ErrTagPromptNotFound))

	// ErrPromptAlreadyExists is returned when trying to create a prompt with an existing name
	ErrPromptAlreadyExists = goerr.New("prompt already exists", goerr.T(apperr.ErrTagAlreadyExists))

	// ErrVersionNotFound is returned when a requested prompt version cannot be found
	ErrVersionNotFound = goerr.New("prompt version not found", goerr.T(apperr.ErrTagVersionNotFound))

	// ErrVersionAlreadyExists is returned when a version number collides with an existing one
	ErrVersionAlreadyExists = goerr.New("prompt version already exists", goerr.T(apperr.ErrTagAlreadyExists))

	// ErrAliasNotFound is returned when a requested alias cannot be found
	ErrAliasNotFound = goerr.New("alias not found", goerr.T(apperr.ErrTagAliasNotFound))

	// ErrTagNotFound is returned when deleting a tag key that does not exist
	ErrTagNotFound = goerr.New("tag not found", goerr.T(apperr.ErrTagTagNotFound))

	// ErrInvalidPromptName is returned when an invalid prompt name is provided
	ErrInvalidPromptName = goerr.New("invalid prompt name", goerr.T(apperr.ErrTagValidation))
)
