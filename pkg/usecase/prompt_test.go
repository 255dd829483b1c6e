package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/repository/database/memory"
	"github.com/m-kurita/promptreg/pkg/usecase"
)

// Helper function to convert string to *string
func stringPtr(s string) *string {
	return &s
}

func setupTest(t *testing.T) (interfaces.PromptUseCases, interfaces.PromptRepository) {
	t.Helper()
	repo := memory.New()
	uc := usecase.NewPromptUseCases(repo)
	return uc, repo
}

func TestCreatePrompt(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	req := &interfaces.CreatePromptRequest{
		Name:        "greeting",
		Description: stringPtr("Friendly greeting prompt"),
		Template:    stringPtr("Hello, {{name}}!"),
		Tags: []prompt.Tag{
			{Key: "team", Value: "support"},
		},
	}

	created, err := uc.CreatePrompt(ctx, req)
	gt.NoError(t, err)
	gt.V(t, created).NotNil()
	gt.Equal(t, created.Name, "greeting")
	gt.Equal(t, created.Description, "Friendly greeting prompt")
	gt.Equal(t, created.Latest, "1")

	val, ok := created.GetTag("team")
	gt.True(t, ok)
	gt.Equal(t, val, "support")

	// The supplied template becomes version "1"
	v, err := uc.GetVersion(ctx, "greeting", "1")
	gt.NoError(t, err)
	gt.Equal(t, v.Template, "Hello, {{name}}!")
}

func TestCreatePrompt_WithoutTemplate(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	created, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: "empty-prompt"})
	gt.NoError(t, err)
	gt.Equal(t, created.Latest, "")

	_, err = uc.GetVersion(ctx, "empty-prompt", "1")
	gt.True(t, errors.Is(err, prompt.ErrVersionNotFound))
}

func TestCreatePrompt_DuplicateName(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: "greeting"})
	gt.NoError(t, err)

	_, err = uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: "greeting"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrPromptAlreadyExists))
}

func TestCreatePrompt_InvalidName(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	cases := []string{"", "-leading-dash", "trailing-dash-", "has space", "has/slash"}
	for _, name := range cases {
		t.Run(fmt.Sprintf("name=%q", name), func(t *testing.T) {
			_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: name})
			gt.Error(t, err)
		})
	}
}

func TestUpdatePrompt(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:        "greeting",
		Description: stringPtr("original"),
		Tags:        []prompt.Tag{{Key: "env", Value: "dev"}},
	})
	gt.NoError(t, err)

	updated, err := uc.UpdatePrompt(ctx, "greeting", &interfaces.UpdatePromptRequest{
		Description: stringPtr("revised"),
		Tags:        []prompt.Tag{{Key: "env", Value: "prod"}, {Key: "owner", Value: "sre"}},
	})
	gt.NoError(t, err)
	gt.Equal(t, updated.Description, "revised")

	// Existing key overwritten, new key added
	env, _ := updated.GetTag("env")
	gt.Equal(t, env, "prod")
	owner, _ := updated.GetTag("owner")
	gt.Equal(t, owner, "sre")
}

func TestUpdatePrompt_NilFieldsKeepValues(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:        "greeting",
		Description: stringPtr("keep me"),
	})
	gt.NoError(t, err)

	updated, err := uc.UpdatePrompt(ctx, "greeting", &interfaces.UpdatePromptRequest{})
	gt.NoError(t, err)
	gt.Equal(t, updated.Description, "keep me")
}

func TestUpdatePrompt_NotFound(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.UpdatePrompt(ctx, "no-such-prompt", &interfaces.UpdatePromptRequest{})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrPromptNotFound))
}

func TestDeletePrompt_CascadesEverything(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:     "greeting",
		Template: stringPtr("v1"),
	})
	gt.NoError(t, err)
	_, err = uc.SetAlias(ctx, "greeting", "live", "1")
	gt.NoError(t, err)

	gt.NoError(t, uc.DeletePrompt(ctx, "greeting"))

	_, err = uc.GetPrompt(ctx, "greeting")
	gt.True(t, errors.Is(err, prompt.ErrPromptNotFound))
	_, err = uc.GetVersion(ctx, "greeting", "1")
	gt.Error(t, err)
	_, err = uc.GetVersionByAlias(ctx, "greeting", "live")
	gt.Error(t, err)
}

func TestDeletePrompt_NotFound(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	err := uc.DeletePrompt(ctx, "no-such-prompt")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrPromptNotFound))
}

func TestGetPrompt_NotFound(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.GetPrompt(ctx, "no-such-prompt")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrPromptNotFound))
}

func TestUpdatePrompt_AdvancesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: "greeting"})
	gt.NoError(t, err)

	p, err := uc.GetPrompt(ctx, "greeting")
	gt.NoError(t, err)
	created := p.CreatedAt
	stamp := p.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	p, err = uc.UpdatePrompt(ctx, "greeting", &interfaces.UpdatePromptRequest{
		Description: stringPtr("says hello"),
	})
	gt.NoError(t, err)
	gt.True(t, p.UpdatedAt.After(stamp))
	gt.Equal(t, p.CreatedAt, created)
	stamp = p.UpdatedAt

	// Tag and alias mutations touch the prompt as well
	time.Sleep(5 * time.Millisecond)
	_, err = uc.SetTag(ctx, "greeting", "team", "ml")
	gt.NoError(t, err)
	p, err = uc.GetPrompt(ctx, "greeting")
	gt.NoError(t, err)
	gt.True(t, p.UpdatedAt.After(stamp))
	stamp = p.UpdatedAt

	_, err = uc.CreateVersion(ctx, "greeting", &interfaces.CreateVersionRequest{Template: "Hello"})
	gt.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = uc.SetAlias(ctx, "greeting", "live", "1")
	gt.NoError(t, err)
	p, err = uc.GetPrompt(ctx, "greeting")
	gt.NoError(t, err)
	gt.True(t, p.UpdatedAt.After(stamp))
}
