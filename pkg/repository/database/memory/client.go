package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// Client is an in-memory implementation of PromptRepository
type Client struct {
	mu       sync.RWMutex
	prompts  map[types.UUID]*prompt.Prompt
	byName   map[string]types.UUID
	versions map[types.UUID]map[string]*prompt.PromptVersion // promptUUID -> version -> PromptVersion
}

// New creates a new in-memory client
func New() *Client {
	return &Client{
		prompts:  make(map[types.UUID]*prompt.Prompt),
		byName:   make(map[string]types.UUID),
		versions: make(map[types.UUID]map[string]*prompt.PromptVersion),
	}
}

// CreatePrompt creates a new prompt
func (c *Client) CreatePrompt(ctx context.Context, p *prompt.Prompt) error {
	if p == nil {
		return goerr.New("prompt cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byName[p.Name]; exists {
		return goerr.Wrap(prompt.ErrPromptAlreadyExists, "name is taken",
			goerr.TV(apperr.PromptNameKey, p.Name))
	}

	if !p.ID.IsValid() {
		p.ID = types.NewUUID(ctx)
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	// Store a copy to avoid external modifications
	c.prompts[p.ID] = p.Clone()
	c.byName[p.Name] = p.ID

	return nil
}

// GetPrompt retrieves a prompt by internal ID
func (c *Client) GetPrompt(ctx context.Context, id types.UUID) (*prompt.Prompt, error) {
	if !id.IsValid() {
		return nil, goerr.New("invalid prompt ID")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, exists := c.prompts[id]
	if !exists {
		return nil, goerr.Wrap(prompt.ErrPromptNotFound, "no such prompt",
			goerr.TV(apperr.PromptUUIDKey, id))
	}

	return p.Clone(), nil
}

// GetPromptByName retrieves a prompt by name
func (c *Client) GetPromptByName(ctx context.Context, name string) (*prompt.Prompt, error) {
	if name == "" {
		return nil, goerr.New("prompt name cannot be empty")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, err := c.getByNameLocked(name)
	if err != nil {
		return nil, err
	}

	return p.Clone(), nil
}

// UpdatePrompt updates an existing prompt. The name is immutable.
func (c *Client) UpdatePrompt(ctx context.Context, p *prompt.Prompt) error {
	if p == nil {
		return goerr.New("prompt cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.getByNameLocked(p.Name)
	if err != nil {
		return err
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt // Preserve original creation time
	p.VersionSeq = existing.VersionSeq
	p.UpdatedAt = time.Now()

	c.prompts[existing.ID] = p.Clone()

	return nil
}

// DeletePrompt deletes a prompt and cascades to all versions and aliases
func (c *Client) DeletePrompt(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.getByNameLocked(name)
	if err != nil {
		return err
	}

	delete(c.versions, p.ID)
	delete(c.prompts, p.ID)
	delete(c.byName, name)

	return nil
}

// ListPrompts returns prompts ordered by name ascending, strictly after
// afterName. limit 0 means no limit.
func (c *Client) ListPrompts(ctx context.Context, afterName string, limit int) ([]*prompt.Prompt, error) {
	if limit < 0 {
		return nil, goerr.New("limit must be non-negative")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		if name > afterName {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	prompts := make([]*prompt.Prompt, 0, len(names))
	for _, name := range names {
		prompts = append(prompts, c.prompts[c.byName[name]].Clone())
	}

	return prompts, nil
}

// CreatePromptVersion appends a new version, allocating the next number from
// the prompt's monotonic counter
func (c *Client) CreatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error {
	if v == nil {
		return goerr.New("prompt version cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.getByNameLocked(v.PromptName)
	if err != nil {
		return err
	}

	if c.versions[p.ID] == nil {
		c.versions[p.ID] = make(map[string]*prompt.PromptVersion)
	}

	p.VersionSeq++
	v.Version = strconv.Itoa(p.VersionSeq)
	v.PromptUUID = p.ID

	now := time.Now()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	c.versions[p.ID][v.Version] = v.Clone()

	p.Latest = v.Version
	p.UpdatedAt = now

	return nil
}

// GetPromptVersion retrieves a specific version of a prompt
func (c *Client) GetPromptVersion(ctx context.Context, name, version string) (*prompt.PromptVersion, error) {
	if version == "" {
		return nil, goerr.New("version cannot be empty")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, err := c.getByNameLocked(name)
	if err != nil {
		return nil, err
	}

	v, exists := c.versions[p.ID][version]
	if !exists {
		return nil, goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
			goerr.TV(apperr.PromptNameKey, name),
			goerr.TV(apperr.VersionKey, version))
	}

	return c.withAliases(p, v), nil
}

// UpdatePromptVersion updates the mutable fields of an existing version. The
// template and creation time are preserved.
func (c *Client) UpdatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error {
	if v == nil {
		return goerr.New("prompt version cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.getByNameLocked(v.PromptName)
	if err != nil {
		return err
	}

	existing, exists := c.versions[p.ID][v.Version]
	if !exists {
		return goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
			goerr.TV(apperr.PromptNameKey, v.PromptName),
			goerr.TV(apperr.VersionKey, v.Version))
	}

	v.PromptUUID = p.ID
	v.Template = existing.Template // Template is immutable
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = time.Now()

	c.versions[p.ID][v.Version] = v.Clone()

	p.UpdatedAt = v.UpdatedAt

	return nil
}

// DeletePromptVersion deletes a version and removes any alias pointing at it
func (c *Client) DeletePromptVersion(ctx context.Context, name, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.getByNameLocked(name)
	if err != nil {
		return err
	}

	if _, exists := c.versions[p.ID][version]; !exists {
		return goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
			goerr.TV(apperr.PromptNameKey, name),
			goerr.TV(apperr.VersionKey, version))
	}

	delete(c.versions[p.ID], version)
	p.DeleteAliasesFor(version)

	if p.Latest == version {
		p.Latest = highestVersion(c.versions[p.ID])
	}
	p.UpdatedAt = time.Now()

	return nil
}

// ListPromptVersions returns versions ordered by numeric version ascending,
// strictly after afterVersion. limit 0 means no limit.
func (c *Client) ListPromptVersions(ctx context.Context, name string, afterVersion int, limit int) ([]*prompt.PromptVersion, error) {
	if limit < 0 {
		return nil, goerr.New("limit must be non-negative")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, err := c.getByNameLocked(name)
	if err != nil {
		return nil, err
	}

	versions := make([]*prompt.PromptVersion, 0, len(c.versions[p.ID]))
	for _, v := range c.versions[p.ID] {
		if v.VersionNumber() > afterVersion {
			versions = append(versions, c.withAliases(p, v))
		}
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber() < versions[j].VersionNumber()
	})

	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}

	return versions, nil
}

// getByNameLocked resolves a prompt by name. Callers must hold c.mu.
func (c *Client) getByNameLocked(name string) (*prompt.Prompt, error) {
	id, exists := c.byName[name]
	if !exists {
		return nil, goerr.Wrap(prompt.ErrPromptNotFound, "no such prompt",
			goerr.TV(apperr.PromptNameKey, name))
	}
	return c.prompts[id], nil
}

// withAliases returns a copy of the version annotated with the alias names
// currently pointing at it
func (c *Client) withAliases(p *prompt.Prompt, v *prompt.PromptVersion) *prompt.PromptVersion {
	cp := v.Clone()
	cp.PromptName = p.Name
	cp.Aliases = nil
	for _, a := range p.Aliases {
		if a.Version == v.Version {
			cp.Aliases = append(cp.Aliases, a.Alias)
		}
	}
	return cp
}

func highestVersion(versions map[string]*prompt.PromptVersion) string {
	best := 0
	for _, v := range versions {
		if n := v.VersionNumber(); n > best {
			best = n
		}
	}
	if best == 0 {
		return ""
	}
	return strconv.Itoa(best)
}
