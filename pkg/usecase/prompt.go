package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
)

// CreatePrompt creates a new prompt, optionally with an initial version when
// a template is supplied
func (u *promptUseCaseImpl) CreatePrompt(ctx context.Context, req *interfaces.CreatePromptRequest) (*prompt.Prompt, error) {
	if req == nil {
		return nil, goerr.New("create prompt request cannot be nil")
	}

	if err := prompt.ValidateName(req.Name); err != nil {
		return nil, goerr.Wrap(err, "invalid prompt name")
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	p := &prompt.Prompt{
		Name:        req.Name,
		Description: description,
	}
	for _, t := range req.Tags {
		p.SetTag(t.Key, t.Value)
	}

	if err := prompt.ValidatePrompt(p); err != nil {
		return nil, goerr.Wrap(err, "prompt validation failed")
	}

	var initial *prompt.PromptVersion
	if req.Template != nil {
		initial = &prompt.PromptVersion{
			PromptName: p.Name,
			Version:    "1", // allocated by the store, pre-filled for validation
			Template:   *req.Template,
		}
		if err := prompt.ValidatePromptVersion(initial); err != nil {
			return nil, goerr.Wrap(err, "initial version validation failed")
		}
	}

	unlock := u.locks.Lock(req.Name)
	defer unlock()

	if err := u.repo.CreatePrompt(ctx, p); err != nil {
		return nil, goerr.Wrap(err, "failed to create prompt")
	}

	if initial != nil {
		if err := u.repo.CreatePromptVersion(ctx, initial); err != nil {
			// Clean up: the prompt must not survive without its promised version
			_ = u.repo.DeletePrompt(ctx, p.Name)
			return nil, goerr.Wrap(err, "failed to create initial version")
		}
	}

	created, err := u.repo.GetPromptByName(ctx, p.Name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reload created prompt")
	}

	emitAudit(ctx, auditEvent{Operation: "create_prompt", Name: p.Name})
	return created, nil
}

// UpdatePrompt updates a prompt's description and upserts the given tags.
// nil fields are left unchanged.
func (u *promptUseCaseImpl) UpdatePrompt(ctx context.Context, name string, req *interfaces.UpdatePromptRequest) (*prompt.Prompt, error) {
	if req == nil {
		return nil, goerr.New("update prompt request cannot be nil")
	}

	for _, t := range req.Tags {
		if err := prompt.ValidateTagKey(t.Key); err != nil {
			return nil, goerr.Wrap(err, "invalid tag key")
		}
		if err := prompt.ValidateTagValue(t.Value); err != nil {
			return nil, goerr.Wrap(err, "invalid tag value")
		}
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	p, err := u.repo.GetPromptByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get prompt for update")
	}

	if req.Description != nil {
		p.Description = *req.Description
	}
	for _, t := range req.Tags {
		p.SetTag(t.Key, t.Value)
	}

	if err := prompt.ValidatePrompt(p); err != nil {
		return nil, goerr.Wrap(err, "prompt validation failed")
	}

	if err := u.repo.UpdatePrompt(ctx, p); err != nil {
		return nil, goerr.Wrap(err, "failed to update prompt")
	}

	emitAudit(ctx, auditEvent{Operation: "update_prompt", Name: name})
	return p, nil
}

// DeletePrompt deletes a prompt. All versions, tags, and aliases are
// deleted with it.
func (u *promptUseCaseImpl) DeletePrompt(ctx context.Context, name string) error {
	if name == "" {
		return goerr.Wrap(prompt.ErrInvalidPromptName, "name is required")
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	if err := u.repo.DeletePrompt(ctx, name); err != nil {
		return goerr.Wrap(err, "failed to delete prompt")
	}

	emitAudit(ctx, auditEvent{Operation: "delete_prompt", Name: name})
	return nil
}

// GetPrompt retrieves a prompt with its tags and aliases
func (u *promptUseCaseImpl) GetPrompt(ctx context.Context, name string) (*prompt.Prompt, error) {
	if name == "" {
		return nil, goerr.Wrap(prompt.ErrInvalidPromptName, "name is required")
	}

	p, err := u.repo.GetPromptByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get prompt")
	}

	return p, nil
}
