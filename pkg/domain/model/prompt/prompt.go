package prompt

import (
	"sort"
	"time"

	"github.com/m-kurita/promptreg/pkg/domain/types"
)

// Prompt is a named, versioned template resource. The Name is unique and
// immutable once created. VersionSeq is a monotonic allocation counter that
// never decreases, even when versions are deleted, so version numbers are
// never reused within the lifetime of a prompt.
type Prompt struct {
	ID          types.UUID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tags        []Tag      `json:"tags"`
	Aliases     []Alias    `json:"aliases"`
	Latest      string     `json:"latest"`
	VersionSeq  int        `json:"version_seq"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Tag is a mutable key-value annotation on a prompt or a version. Keys are
// unique within their owning scope; setting an existing key overwrites it.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Alias is a mutable named pointer from a prompt to one of its versions.
type Alias struct {
	Alias   string `json:"alias"`
	Version string `json:"version"`
}

// Clone returns a deep copy of the prompt
func (p *Prompt) Clone() *Prompt {
	c := *p
	c.Tags = append([]Tag(nil), p.Tags...)
	c.Aliases = append([]Alias(nil), p.Aliases...)
	return &c
}

// GetTag returns the value of the tag with the given key
func (p *Prompt) GetTag(key string) (string, bool) {
	for _, t := range p.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// SetTag upserts a tag, keeping the tag list sorted by key
func (p *Prompt) SetTag(key, value string) {
	p.Tags = setTag(p.Tags, key, value)
}

// DeleteTag removes a tag by key, reporting whether it existed
func (p *Prompt) DeleteTag(key string) bool {
	tags, ok := deleteTag(p.Tags, key)
	p.Tags = tags
	return ok
}

// AliasTarget returns the version the given alias points to
func (p *Prompt) AliasTarget(alias string) (string, bool) {
	for _, a := range p.Aliases {
		if a.Alias == alias {
			return a.Version, true
		}
	}
	return "", false
}

// SetAlias upserts an alias mapping, keeping the alias list sorted
func (p *Prompt) SetAlias(alias, version string) {
	for i, a := range p.Aliases {
		if a.Alias == alias {
			p.Aliases[i].Version = version
			return
		}
	}
	p.Aliases = append(p.Aliases, Alias{Alias: alias, Version: version})
	sort.Slice(p.Aliases, func(i, j int) bool { return p.Aliases[i].Alias < p.Aliases[j].Alias })
}

// DeleteAlias removes an alias, reporting whether it existed
func (p *Prompt) DeleteAlias(alias string) bool {
	for i, a := range p.Aliases {
		if a.Alias == alias {
			p.Aliases = append(p.Aliases[:i], p.Aliases[i+1:]...)
			return true
		}
	}
	return false
}

// DeleteAliasesFor removes every alias pointing at the given version and
// returns the removed alias names
func (p *Prompt) DeleteAliasesFor(version string) []string {
	var removed []string
	kept := p.Aliases[:0]
	for _, a := range p.Aliases {
		if a.Version == version {
			removed = append(removed, a.Alias)
			continue
		}
		kept = append(kept, a)
	}
	p.Aliases = kept
	return removed
}

func setTag(tags []Tag, key, value string) []Tag {
	for i, t := range tags {
		if t.Key == key {
			tags[i].Value = value
			return tags
		}
	}
	tags = append(tags, Tag{Key: key, Value: value})
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	return tags
}

func deleteTag(tags []Tag, key string) ([]Tag, bool) {
	for i, t := range tags {
		if t.Key == key {
			return append(tags[:i], tags[i+1:]...), true
		}
	}
	return tags, false
}
