package memory_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/repository/database/memory"
)

func createTestPrompt(t *testing.T, repo *memory.Client, name string) *prompt.Prompt {
	t.Helper()
	ctx := context.Background()
	p := &prompt.Prompt{
		Name:        name,
		Description: "a test prompt named " + name,
	}
	gt.NoError(t, repo.CreatePrompt(ctx, p))
	return p
}

func createTestVersion(t *testing.T, repo *memory.Client, name, template string) *prompt.PromptVersion {
	t.Helper()
	ctx := context.Background()
	v := &prompt.PromptVersion{
		PromptName: name,
		Template:   template,
	}
	gt.NoError(t, repo.CreatePromptVersion(ctx, v))
	return v
}

func TestCreateAndGetPrompt(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	created := createTestPrompt(t, repo, "greeting")
	gt.True(t, created.ID.IsValid())

	got, err := repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	gt.Equal(t, got.Name, "greeting")
	gt.Equal(t, got.Description, created.Description)
	gt.Equal(t, len(got.Tags), 0)
	gt.Equal(t, len(got.Aliases), 0)
	gt.Equal(t, got.Latest, "")

	byID, err := repo.GetPrompt(ctx, created.ID)
	gt.NoError(t, err)
	gt.Equal(t, byID.Name, "greeting")
}

func TestCreatePromptDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	createTestPrompt(t, repo, "greeting")

	err := repo.CreatePrompt(ctx, &prompt.Prompt{Name: "greeting"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrPromptAlreadyExists))
}

func TestGetPromptNotFound(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	_, err := repo.GetPromptByName(ctx, "missing")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrPromptNotFound))
}

func TestVersionAllocationIsMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createTestPrompt(t, repo, "greeting")

	v1 := createTestVersion(t, repo, "greeting", "Hello {{name}}")
	v2 := createTestVersion(t, repo, "greeting", "Hi {{name}}")
	gt.Equal(t, v1.Version, "1")
	gt.Equal(t, v2.Version, "2")

	// Deleting the latest version must not allow its number to be reused
	gt.NoError(t, repo.DeletePromptVersion(ctx, "greeting", "2"))

	v3 := createTestVersion(t, repo, "greeting", "Hey {{name}}")
	gt.Equal(t, v3.Version, "3")

	p, err := repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	gt.Equal(t, p.Latest, "3")
}

func TestDeleteVersionRecomputesLatest(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createTestPrompt(t, repo, "greeting")
	createTestVersion(t, repo, "greeting", "a")
	createTestVersion(t, repo, "greeting", "b")

	gt.NoError(t, repo.DeletePromptVersion(ctx, "greeting", "2"))

	p, err := repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	gt.Equal(t, p.Latest, "1")

	gt.NoError(t, repo.DeletePromptVersion(ctx, "greeting", "1"))

	p, err = repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	gt.Equal(t, p.Latest, "")
}

func TestDeleteVersionRemovesAliases(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createTestPrompt(t, repo, "greeting")
	createTestVersion(t, repo, "greeting", "a")
	createTestVersion(t, repo, "greeting", "b")

	p, err := repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	p.SetAlias("live", "2")
	p.SetAlias("stable", "1")
	gt.NoError(t, repo.UpdatePrompt(ctx, p))

	gt.NoError(t, repo.DeletePromptVersion(ctx, "greeting", "2"))

	p, err = repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	_, ok := p.AliasTarget("live")
	gt.False(t, ok)
	target, ok := p.AliasTarget("stable")
	gt.True(t, ok)
	gt.Equal(t, target, "1")
}

func TestDeletePromptCascades(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createTestPrompt(t, repo, "greeting")
	createTestVersion(t, repo, "greeting", "a")

	gt.NoError(t, repo.DeletePrompt(ctx, "greeting"))

	_, err := repo.GetPromptByName(ctx, "greeting")
	gt.True(t, errors.Is(err, prompt.ErrPromptNotFound))

	// Recreating the prompt starts the version counter fresh
	createTestPrompt(t, repo, "greeting")
	v := createTestVersion(t, repo, "greeting", "b")
	gt.Equal(t, v.Version, "1")
}

func TestUpdateVersionPreservesTemplate(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createTestPrompt(t, repo, "greeting")
	createTestVersion(t, repo, "greeting", "Hello {{name}}")

	v, err := repo.GetPromptVersion(ctx, "greeting", "1")
	gt.NoError(t, err)
	v.Description = "first cut"
	v.Template = "MUTATED"
	gt.NoError(t, repo.UpdatePromptVersion(ctx, v))

	got, err := repo.GetPromptVersion(ctx, "greeting", "1")
	gt.NoError(t, err)
	gt.Equal(t, got.Description, "first cut")
	gt.Equal(t, got.Template, "Hello {{name}}")
}

func TestGetVersionCarriesAliases(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createTestPrompt(t, repo, "greeting")
	createTestVersion(t, repo, "greeting", "a")

	p, err := repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	p.SetAlias("live", "1")
	gt.NoError(t, repo.UpdatePrompt(ctx, p))

	v, err := repo.GetPromptVersion(ctx, "greeting", "1")
	gt.NoError(t, err)
	gt.Equal(t, v.Aliases, []string{"live"})
}

func TestListPromptsPagination(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	for i := 0; i < 5; i++ {
		createTestPrompt(t, repo, "prompt-"+strconv.Itoa(i))
	}

	page, err := repo.ListPrompts(ctx, "", 2)
	gt.NoError(t, err)
	gt.Equal(t, len(page), 2)
	gt.Equal(t, page[0].Name, "prompt-0")
	gt.Equal(t, page[1].Name, "prompt-1")

	page, err = repo.ListPrompts(ctx, "prompt-1", 2)
	gt.NoError(t, err)
	gt.Equal(t, len(page), 2)
	gt.Equal(t, page[0].Name, "prompt-2")
	gt.Equal(t, page[1].Name, "prompt-3")

	page, err = repo.ListPrompts(ctx, "prompt-3", 0)
	gt.NoError(t, err)
	gt.Equal(t, len(page), 1)
	gt.Equal(t, page[0].Name, "prompt-4")
}

func TestListPromptVersionsOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createTestPrompt(t, repo, "greeting")
	for i := 0; i < 4; i++ {
		createTestVersion(t, repo, "greeting", "t"+strconv.Itoa(i))
	}

	versions, err := repo.ListPromptVersions(ctx, "greeting", 0, 0)
	gt.NoError(t, err)
	gt.Equal(t, len(versions), 4)
	for i, v := range versions {
		gt.Equal(t, v.Version, strconv.Itoa(i+1))
	}

	versions, err = repo.ListPromptVersions(ctx, "greeting", 2, 0)
	gt.NoError(t, err)
	gt.Equal(t, len(versions), 2)
	gt.Equal(t, versions[0].Version, "3")
}

func TestStoredCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	created := createTestPrompt(t, repo, "greeting")

	// Mutating the caller's struct must not leak into the store
	created.Description = "mutated"
	created.SetTag("env", "prod")

	got, err := repo.GetPromptByName(ctx, "greeting")
	gt.NoError(t, err)
	gt.NotEqual(t, got.Description, "mutated")
	gt.Equal(t, len(got.Tags), 0)
}
