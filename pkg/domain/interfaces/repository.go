package interfaces

import (
	"context"

	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types"
)

// PromptRepository manages prompt and prompt version persistence. Each method
// is atomic with respect to the backing store. Listing methods return results
// in a stable order (prompts by name, versions by numeric version) to support
// keyset pagination.
type PromptRepository interface {
	// Prompt CRUD
	CreatePrompt(ctx context.Context, p *prompt.Prompt) error
	GetPrompt(ctx context.Context, id types.UUID) (*prompt.Prompt, error)
	GetPromptByName(ctx context.Context, name string) (*prompt.Prompt, error)
	UpdatePrompt(ctx context.Context, p *prompt.Prompt) error
	// DeletePrompt removes the prompt and cascades to all of its versions,
	// version tags, aliases, and entity tags.
	DeletePrompt(ctx context.Context, name string) error
	// ListPrompts returns prompts ordered by name ascending, strictly after
	// afterName ("" starts from the beginning). limit 0 means no limit.
	ListPrompts(ctx context.Context, afterName string, limit int) ([]*prompt.Prompt, error)

	// Version management. CreatePromptVersion allocates the next version
	// number from the prompt's monotonic counter and writes it back into
	// v.Version; numbers are never reused, even after deletion.
	CreatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error
	GetPromptVersion(ctx context.Context, name, version string) (*prompt.PromptVersion, error)
	UpdatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error
	// DeletePromptVersion removes the version and, in the same atomic
	// operation, any alias pointing at it.
	DeletePromptVersion(ctx context.Context, name, version string) error
	// ListPromptVersions returns versions ordered by numeric version
	// ascending, strictly after afterVersion (0 starts from the beginning).
	ListPromptVersions(ctx context.Context, name string, afterVersion int, limit int) ([]*prompt.PromptVersion, error)
}
