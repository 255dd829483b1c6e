package usecase

import (
	"context"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
	"github.com/m-kurita/promptreg/pkg/service/filter"
)

// SearchPrompts returns one page of prompts matching the filter, ordered by
// name. The continuation token carries the last returned name, so pages are
// stable under concurrent creation of unrelated prompts.
func (u *promptUseCaseImpl) SearchPrompts(ctx context.Context, req *interfaces.SearchPromptsRequest) (*interfaces.SearchPromptsResponse, error) {
	if req == nil {
		req = &interfaces.SearchPromptsRequest{}
	}

	pred, err := filter.Parse(req.Filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse filter")
	}

	limit, err := normalizeLimit(req.MaxResults)
	if err != nil {
		return nil, err
	}

	tok, err := decodePageToken(req.PageToken)
	if err != nil {
		return nil, err
	}

	var matches []*prompt.Prompt
	cursor := tok.After
	for len(matches) <= limit {
		batch, err := u.repo.ListPrompts(ctx, cursor, listBatchSize)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list prompts")
		}
		if len(batch) == 0 {
			break
		}
		cursor = batch[len(batch)-1].Name

		for _, p := range batch {
			if pred(promptTarget(p)) {
				matches = append(matches, p)
				if len(matches) > limit {
					break
				}
			}
		}

		if len(batch) < listBatchSize {
			break
		}
	}

	resp := &interfaces.SearchPromptsResponse{Prompts: matches}
	if len(matches) > limit {
		resp.Prompts = matches[:limit]
		resp.NextPageToken = encodePageToken(pageToken{After: matches[limit-1].Name})
	}

	return resp, nil
}

// SearchVersions returns one page of a prompt's versions matching the
// filter, ordered by version number ascending
func (u *promptUseCaseImpl) SearchVersions(ctx context.Context, name string, req *interfaces.SearchVersionsRequest) (*interfaces.SearchVersionsResponse, error) {
	if req == nil {
		req = &interfaces.SearchVersionsRequest{}
	}

	pred, err := filter.Parse(req.Filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse filter")
	}

	limit, err := normalizeLimit(req.MaxResults)
	if err != nil {
		return nil, err
	}

	tok, err := decodePageToken(req.PageToken)
	if err != nil {
		return nil, err
	}

	after := 0
	if tok.After != "" {
		// Version cursors are numeric; a non-numeric cursor came from a
		// different listing and must be rejected, not silently ignored
		after, err = strconv.Atoi(tok.After)
		if err != nil {
			return nil, goerr.Wrap(err, "page token does not fit version search",
				goerr.T(apperr.ErrTagInvalidToken),
				goerr.TV(apperr.PageTokenKey, req.PageToken))
		}
	}

	var matches []*prompt.PromptVersion
	cursor := after
	for len(matches) <= limit {
		batch, err := u.repo.ListPromptVersions(ctx, name, cursor, listBatchSize)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list versions")
		}
		if len(batch) == 0 {
			break
		}
		cursor = batch[len(batch)-1].VersionNumber()

		for _, v := range batch {
			if pred(versionTarget(v)) {
				matches = append(matches, v)
				if len(matches) > limit {
					break
				}
			}
		}

		if len(batch) < listBatchSize {
			break
		}
	}

	resp := &interfaces.SearchVersionsResponse{Versions: matches}
	if len(matches) > limit {
		resp.Versions = matches[:limit]
		resp.NextPageToken = encodePageToken(pageToken{After: matches[limit-1].Version})
	}

	return resp, nil
}

func promptTarget(p *prompt.Prompt) filter.Target {
	tags := make(map[string]string, len(p.Tags))
	for _, t := range p.Tags {
		tags[t.Key] = t.Value
	}
	return filter.Target{
		Name:        p.Name,
		Description: p.Description,
		Tags:        tags,
	}
}

// versionTarget exposes the version number as the name attribute, so
// filters like "name = '3'" select a specific version
func versionTarget(v *prompt.PromptVersion) filter.Target {
	tags := make(map[string]string, len(v.Tags))
	for _, t := range v.Tags {
		tags[t.Key] = t.Value
	}
	return filter.Target{
		Name:        v.Version,
		Description: v.Description,
		Tags:        tags,
	}
}
