package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// SetTag upserts an entity-scoped tag
func (u *promptUseCaseImpl) SetTag(ctx context.Context, name, key, value string) (*prompt.Prompt, error) {
	if err := prompt.ValidateTagKey(key); err != nil {
		return nil, goerr.Wrap(err, "invalid tag key")
	}
	if err := prompt.ValidateTagValue(value); err != nil {
		return nil, goerr.Wrap(err, "invalid tag value")
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	p, err := u.repo.GetPromptByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get prompt")
	}

	p.SetTag(key, value)

	if err := u.repo.UpdatePrompt(ctx, p); err != nil {
		return nil, goerr.Wrap(err, "failed to store tag")
	}

	emitAudit(ctx, auditEvent{Operation: "set_tag", Name: name, TagKey: key})
	return p, nil
}

// DeleteTag removes an entity-scoped tag by key
func (u *promptUseCaseImpl) DeleteTag(ctx context.Context, name, key string) error {
	if key == "" {
		return goerr.New("tag key is required", goerr.T(apperr.ErrTagValidation))
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	p, err := u.repo.GetPromptByName(ctx, name)
	if err != nil {
		return goerr.Wrap(err, "failed to get prompt")
	}

	if !p.DeleteTag(key) {
		return goerr.Wrap(prompt.ErrTagNotFound, "no such tag",
			goerr.TV(apperr.PromptNameKey, name),
			goerr.TV(apperr.TagKeyKey, key))
	}

	if err := u.repo.UpdatePrompt(ctx, p); err != nil {
		return goerr.Wrap(err, "failed to store tag removal")
	}

	emitAudit(ctx, auditEvent{Operation: "delete_tag", Name: name, TagKey: key})
	return nil
}

// SetVersionTag upserts a version-scoped tag
func (u *promptUseCaseImpl) SetVersionTag(ctx context.Context, name, version, key, value string) (*prompt.PromptVersion, error) {
	if err := prompt.ValidateTagKey(key); err != nil {
		return nil, goerr.Wrap(err, "invalid tag key")
	}
	if err := prompt.ValidateTagValue(value); err != nil {
		return nil, goerr.Wrap(err, "invalid tag value")
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	v, err := u.repo.GetPromptVersion(ctx, name, version)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get version")
	}

	v.SetTag(key, value)

	if err := u.repo.UpdatePromptVersion(ctx, v); err != nil {
		return nil, goerr.Wrap(err, "failed to store version tag")
	}

	emitAudit(ctx, auditEvent{Operation: "set_version_tag", Name: name, Version: version, TagKey: key})
	return v, nil
}

// DeleteVersionTag removes a version-scoped tag by key
func (u *promptUseCaseImpl) DeleteVersionTag(ctx context.Context, name, version, key string) error {
	if key == "" {
		return goerr.New("tag key is required", goerr.T(apperr.ErrTagValidation))
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	v, err := u.repo.GetPromptVersion(ctx, name, version)
	if err != nil {
		return goerr.Wrap(err, "failed to get version")
	}

	if !v.DeleteTag(key) {
		return goerr.Wrap(prompt.ErrTagNotFound, "no such tag",
			goerr.TV(apperr.PromptNameKey, name),
			goerr.TV(apperr.VersionKey, version),
			goerr.TV(apperr.TagKeyKey, key))
	}

	if err := u.repo.UpdatePromptVersion(ctx, v); err != nil {
		return goerr.Wrap(err, "failed to store version tag removal")
	}

	emitAudit(ctx, auditEvent{Operation: "delete_version_tag", Name: name, Version: version, TagKey: key})
	return nil
}
