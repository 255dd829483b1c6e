package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// SetAlias points an alias at a version, overwriting an existing mapping.
// The target version must exist at the time the alias is set.
func (u *promptUseCaseImpl) SetAlias(ctx context.Context, name, alias, version string) (*prompt.Prompt, error) {
	if err := prompt.ValidateAlias(alias); err != nil {
		return nil, goerr.Wrap(err, "invalid alias")
	}
	if err := prompt.ValidateVersion(version); err != nil {
		return nil, goerr.Wrap(err, "invalid version")
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	p, err := u.repo.GetPromptByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get prompt")
	}

	// Alias targets must reference a live version
	if _, err := u.repo.GetPromptVersion(ctx, name, version); err != nil {
		return nil, goerr.Wrap(err, "alias target does not exist",
			goerr.TV(apperr.AliasKey, alias),
			goerr.TV(apperr.VersionKey, version))
	}

	p.SetAlias(alias, version)

	if err := u.repo.UpdatePrompt(ctx, p); err != nil {
		return nil, goerr.Wrap(err, "failed to store alias")
	}

	emitAudit(ctx, auditEvent{Operation: "set_alias", Name: name, Alias: alias, Version: version})
	return p, nil
}

// DeleteAlias removes an alias mapping
func (u *promptUseCaseImpl) DeleteAlias(ctx context.Context, name, alias string) error {
	if alias == "" {
		return goerr.New("alias is required", goerr.T(apperr.ErrTagValidation))
	}

	unlock := u.locks.Lock(name)
	defer unlock()

	p, err := u.repo.GetPromptByName(ctx, name)
	if err != nil {
		return goerr.Wrap(err, "failed to get prompt")
	}

	if !p.DeleteAlias(alias) {
		return goerr.Wrap(prompt.ErrAliasNotFound, "no such alias",
			goerr.TV(apperr.PromptNameKey, name),
			goerr.TV(apperr.AliasKey, alias))
	}

	if err := u.repo.UpdatePrompt(ctx, p); err != nil {
		return goerr.Wrap(err, "failed to store alias removal")
	}

	emitAudit(ctx, auditEvent{Operation: "delete_alias", Name: name, Alias: alias})
	return nil
}
