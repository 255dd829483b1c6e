package prompt

import (
	"strconv"
	"time"

	"github.com/m-kurita/promptreg/pkg/domain/types"
)

// PromptVersion is an immutable snapshot of a template under a prompt. The
// Version field is a positive decimal integer serialized as a string,
// allocated from the owning prompt's VersionSeq. Template and CreatedAt are
// immutable after creation.
type PromptVersion struct {
	PromptUUID  types.UUID `json:"prompt_uuid"`
	PromptName  string     `json:"prompt_name"`
	Version     string     `json:"version"`
	Template    string     `json:"template"`
	Description string     `json:"description"`
	Tags        []Tag      `json:"tags"`
	Aliases     []string   `json:"aliases,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the version
func (v *PromptVersion) Clone() *PromptVersion {
	c := *v
	c.Tags = append([]Tag(nil), v.Tags...)
	c.Aliases = append([]string(nil), v.Aliases...)
	return &c
}

// GetTag returns the value of the tag with the given key
func (v *PromptVersion) GetTag(key string) (string, bool) {
	for _, t := range v.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// SetTag upserts a version-scoped tag
func (v *PromptVersion) SetTag(key, value string) {
	v.Tags = setTag(v.Tags, key, value)
}

// DeleteTag removes a version-scoped tag by key, reporting whether it existed
func (v *PromptVersion) DeleteTag(key string) bool {
	tags, ok := deleteTag(v.Tags, key)
	v.Tags = tags
	return ok
}

// VersionNumber parses the version string as its numeric value. Returns 0
// for malformed versions, which sort before any allocated version.
func (v *PromptVersion) VersionNumber() int {
	n, err := strconv.Atoi(v.Version)
	if err != nil {
		return 0
	}
	return n
}

// CompareVersions orders two version strings by numeric value
func CompareVersions(a, b string) int {
	na, _ := strconv.Atoi(a)
	nb, _ := strconv.Atoi(b)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}
