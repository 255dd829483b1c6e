package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
)

func TestSetAlias(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:     "greeting",
		Template: stringPtr("v1"),
	})
	gt.NoError(t, err)

	p, err := uc.SetAlias(ctx, "greeting", "live", "1")
	gt.NoError(t, err)

	target, ok := p.AliasTarget("live")
	gt.True(t, ok)
	gt.Equal(t, target, "1")
}

func TestSetAlias_Overwrite(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:     "greeting",
		Template: stringPtr("v1"),
	})
	gt.NoError(t, err)
	_, err = uc.CreateVersion(ctx, "greeting", &interfaces.CreateVersionRequest{Template: "v2"})
	gt.NoError(t, err)

	_, err = uc.SetAlias(ctx, "greeting", "live", "1")
	gt.NoError(t, err)

	p, err := uc.SetAlias(ctx, "greeting", "live", "2")
	gt.NoError(t, err)

	target, _ := p.AliasTarget("live")
	gt.Equal(t, target, "2")

	// Overwriting must not leave a second mapping behind
	gt.Equal(t, len(p.Aliases), 1)
}

func TestSetAlias_TargetMustExist(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: "greeting"})
	gt.NoError(t, err)

	_, err = uc.SetAlias(ctx, "greeting", "live", "7")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrVersionNotFound))
}

func TestSetAlias_RejectsNumericAlias(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:     "greeting",
		Template: stringPtr("v1"),
	})
	gt.NoError(t, err)

	// A purely numeric alias would be ambiguous with a version number
	_, err = uc.SetAlias(ctx, "greeting", "42", "1")
	gt.Error(t, err)
}

func TestDeleteAlias(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:     "greeting",
		Template: stringPtr("v1"),
	})
	gt.NoError(t, err)
	_, err = uc.SetAlias(ctx, "greeting", "live", "1")
	gt.NoError(t, err)

	gt.NoError(t, uc.DeleteAlias(ctx, "greeting", "live"))

	// Deleting the alias leaves the target version in place
	_, err = uc.GetVersion(ctx, "greeting", "1")
	gt.NoError(t, err)

	err = uc.DeleteAlias(ctx, "greeting", "live")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrAliasNotFound))
}
