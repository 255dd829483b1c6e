package interfaces

import (
	"context"

	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
)

// CreatePromptRequest carries the fields for creating a prompt. Optional
// fields are pointers: nil means the field was omitted.
type CreatePromptRequest struct {
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Template    *string      `json:"template,omitempty"` // creates version "1" when present
	Tags        []prompt.Tag `json:"tags,omitempty"`
}

// UpdatePromptRequest carries mutable prompt fields. nil means no change;
// provided tags are upserted into the existing tag set.
type UpdatePromptRequest struct {
	Description *string      `json:"description,omitempty"`
	Tags        []prompt.Tag `json:"tags,omitempty"`
}

// CreateVersionRequest carries the fields for appending a version. The
// version number is allocated by the registry, not the caller.
type CreateVersionRequest struct {
	Template    string       `json:"template"`
	Description *string      `json:"description,omitempty"`
	Tags        []prompt.Tag `json:"tags,omitempty"`
}

// UpdateVersionRequest carries mutable version fields. The template is
// immutable and cannot appear here.
type UpdateVersionRequest struct {
	Description *string      `json:"description,omitempty"`
	Tags        []prompt.Tag `json:"tags,omitempty"`
}

// SearchPromptsRequest is a paginated, filtered prompt listing request
type SearchPromptsRequest struct {
	Filter     string `json:"filter,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	PageToken  string `json:"page_token,omitempty"`
}

// SearchPromptsResponse carries one page of matching prompts. NextPageToken
// is empty when no further results exist.
type SearchPromptsResponse struct {
	Prompts       []*prompt.Prompt `json:"prompts"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

// SearchVersionsRequest is a paginated, filtered version listing request
// scoped to one prompt
type SearchVersionsRequest struct {
	Filter     string `json:"filter,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	PageToken  string `json:"page_token,omitempty"`
}

// SearchVersionsResponse carries one page of matching versions
type SearchVersionsResponse struct {
	Versions      []*prompt.PromptVersion `json:"versions"`
	NextPageToken string                  `json:"next_page_token,omitempty"`
}

// PromptUseCases is the registry surface: every operation validates its
// identifiers, enforces uniqueness and referential invariants, and returns
// the full post-mutation state of the affected record.
type PromptUseCases interface {
	CreatePrompt(ctx context.Context, req *CreatePromptRequest) (*prompt.Prompt, error)
	UpdatePrompt(ctx context.Context, name string, req *UpdatePromptRequest) (*prompt.Prompt, error)
	DeletePrompt(ctx context.Context, name string) error
	GetPrompt(ctx context.Context, name string) (*prompt.Prompt, error)
	SearchPrompts(ctx context.Context, req *SearchPromptsRequest) (*SearchPromptsResponse, error)

	CreateVersion(ctx context.Context, name string, req *CreateVersionRequest) (*prompt.PromptVersion, error)
	UpdateVersion(ctx context.Context, name, version string, req *UpdateVersionRequest) (*prompt.PromptVersion, error)
	DeleteVersion(ctx context.Context, name, version string) error
	GetVersion(ctx context.Context, name, version string) (*prompt.PromptVersion, error)
	GetVersionByAlias(ctx context.Context, name, alias string) (*prompt.PromptVersion, error)
	SearchVersions(ctx context.Context, name string, req *SearchVersionsRequest) (*SearchVersionsResponse, error)

	SetAlias(ctx context.Context, name, alias, version string) (*prompt.Prompt, error)
	DeleteAlias(ctx context.Context, name, alias string) error

	SetTag(ctx context.Context, name, key, value string) (*prompt.Prompt, error)
	DeleteTag(ctx context.Context, name, key string) error
	SetVersionTag(ctx context.Context, name, version, key, value string) (*prompt.PromptVersion, error)
	DeleteVersionTag(ctx context.Context, name, version, key string) error
}
