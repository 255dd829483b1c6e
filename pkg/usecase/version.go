package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// CreateVersion appends a new immutable version to a prompt. The version
// number is allocated by the backing store and never reused.
func (u *promptUseCaseImpl) CreateVersion(ctx context.Context, name string, req *interfaces.CreateVersionRequest) (*prompt.PromptVersion, error) {
	if req == nil {
		return nil, goerr.New("create version request cannot be nil")
	}

	if err := prompt.ValidateName(name); err != nil {
		return nil, goerr.Wrap(err, "invalid prompt name")
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	v := &prompt.PromptVersion{
		PromptName:  name,
		Version:     "1", // allocated by the store, pre-filled for validation
		Template:    req.Template,
		Description: description,
	}
	for _, t := range req.Tags {
		v.SetTag(t.Key, t.Value)
	}

	if err := prompt.ValidatePromptVersion(v); err != nil {
		return nil, goerr.Wrap(err, "version validation failed")
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	if err := u.repo.CreatePromptVersion(ctx, v); err != nil {
		return nil, goerr.Wrap(err, "failed to create version")
	}

	emitAudit(ctx, auditEvent{Operation: "create_version", Name: name, Version: v.Version})
	return v, nil
}

// UpdateVersion updates a version's description and upserts the given tags.
// The template is immutable and cannot be changed here.
func (u *promptUseCaseImpl) UpdateVersion(ctx context.Context, name, version string, req *interfaces.UpdateVersionRequest) (*prompt.PromptVersion, error) {
	if req == nil {
		return nil, goerr.New("update version request cannot be nil")
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

	v, err := u.repo.GetPromptVersion(ctx, name, version)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get version for update")
	}

	if req.Description != nil {
		v.Description = *req.Description
	}
	for _, t := range req.Tags {
		v.SetTag(t.Key, t.Value)
	}

	if err := prompt.ValidatePromptVersion(v); err != nil {
		return nil, goerr.Wrap(err, "version validation failed")
	}

	if err := u.repo.UpdatePromptVersion(ctx, v); err != nil {
		return nil, goerr.Wrap(err, "failed to update version")
	}

	emitAudit(ctx, auditEvent{Operation: "update_version", Name: name, Version: version})
	return v, nil
}

// DeleteVersion deletes a version. Any alias pointing at it is removed in
// the same operation, so aliases never dangle.
func (u *promptUseCaseImpl) DeleteVersion(ctx context.Context, name, version string) error {
	if err := prompt.ValidateVersion(version); err != nil {
		return goerr.Wrap(err, "invalid version")
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	if err := u.repo.DeletePromptVersion(ctx, name, version); err != nil {
		return goerr.Wrap(err, "failed to delete version")
	}

	emitAudit(ctx, auditEvent{Operation: "delete_version", Name: name, Version: version})
	return nil
}

// GetVersion retrieves a specific version of a prompt
func (u *promptUseCaseImpl) GetVersion(ctx context.Context, name, version string) (*prompt.PromptVersion, error) {
	if err := prompt.ValidateVersion(version); err != nil {
		return nil, goerr.Wrap(err, "invalid version")
	}

	v, err := u.repo.GetPromptVersion(ctx, name, version)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get version")
	}

	return v, nil
}

// GetVersionByAlias resolves an alias to the version it points to
func (u *promptUseCaseImpl) GetVersionByAlias(ctx context.Context, name, alias string) (*prompt.PromptVersion, error) {
	if alias == "" {
		return nil, goerr.New("alias is required", goerr.T(apperr.ErrTagValidation))
	}

	p, err := u.repo.GetPromptByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get prompt")
	}

	target, ok := p.AliasTarget(alias)
	if !ok {
		return nil, goerr.Wrap(prompt.ErrAliasNotFound, "no such alias",
			goerr.TV(apperr.PromptNameKey, name),
			goerr.TV(apperr.AliasKey, alias))
	}

	v, err := u.repo.GetPromptVersion(ctx, name, target)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve alias target",
			goerr.TV(apperr.AliasKey, alias),
			goerr.TV(apperr.VersionKey, target))
	}

	return v, nil
}
