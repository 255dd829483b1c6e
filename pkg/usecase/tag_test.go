package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
)

func TestSetTag_Upsert(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: "greeting"})
	gt.NoError(t, err)

	p, err := uc.SetTag(ctx, "greeting", "env", "dev")
	gt.NoError(t, err)
	val, _ := p.GetTag("env")
	gt.Equal(t, val, "dev")

	// Same key again replaces the value, no duplicate entry
	p, err = uc.SetTag(ctx, "greeting", "env", "prod")
	gt.NoError(t, err)
	val, _ = p.GetTag("env")
	gt.Equal(t, val, "prod")
	gt.Equal(t, len(p.Tags), 1)
}

func TestDeleteTag(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name: "greeting",
		Tags: []prompt.Tag{{Key: "env", Value: "dev"}},
	})
	gt.NoError(t, err)

	gt.NoError(t, uc.DeleteTag(ctx, "greeting", "env"))

	p, err := uc.GetPrompt(ctx, "greeting")
	gt.NoError(t, err)
	_, ok := p.GetTag("env")
	gt.False(t, ok)

	err = uc.DeleteTag(ctx, "greeting", "env")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrTagNotFound))
}

func TestVersionTags(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{
		Name:     "greeting",
		Template: stringPtr("Hello"),
	})
	gt.NoError(t, err)

	v, err := uc.SetVersionTag(ctx, "greeting", "1", "validated", "true")
	gt.NoError(t, err)
	val, ok := v.GetTag("validated")
	gt.True(t, ok)
	gt.Equal(t, val, "true")

	// Version tags are scoped to the version, not the prompt
	p, err := uc.GetPrompt(ctx, "greeting")
	gt.NoError(t, err)
	_, ok = p.GetTag("validated")
	gt.False(t, ok)

	gt.NoError(t, uc.DeleteVersionTag(ctx, "greeting", "1", "validated"))

	err = uc.DeleteVersionTag(ctx, "greeting", "1", "validated")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, prompt.ErrTagNotFound))
}

func TestSetTag_InvalidKey(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupTest(t)

	_, err := uc.CreatePrompt(ctx, &interfaces.CreatePromptRequest{Name: "greeting"})
	gt.NoError(t, err)

	_, err = uc.SetTag(ctx, "greeting", "", "value")
	gt.Error(t, err)
	_, err = uc.SetTag(ctx, "greeting", "bad key", "value")
	gt.Error(t, err)
}
