package apperr

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/types"
)

// Domain entity related keys
var (
	PromptUUIDKey = goerr.NewTypedKey[types.UUID]("prompt_uuid")
	PromptNameKey = goerr.NewTypedKey[string]("prompt_name")
	VersionKey    = goerr.NewTypedKey[string]("version")
	AliasKey      = goerr.NewTypedKey[string]("alias")
	TagKeyKey     = goerr.NewTypedKey[string]("tag_key")
)

// Processing related keys
var (
	FilterKey    = goerr.NewTypedKey[string]("filter")
	PageTokenKey = goerr.NewTypedKey[string]("page_token")
	OperationKey = goerr.NewTypedKey[string]("operation")
)

// Firestore related keys
var (
	CollectionKey = goerr.NewTypedKey[string]("collection")
	DocumentIDKey = goerr.NewTypedKey[string]("document_id")
	ProjectIDKey  = goerr.NewTypedKey[string]("project_id")
)
