package prompt

import (
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

var (
	// Prompt name format: alphanumeric characters + '_', '-', '.' allowed except at the beginning and end
	// Examples: "greeting", "qa-bot", "team.summarizer_v2"
	promptNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

	// Alias format: same character set as prompt names, but a purely numeric
	// alias is rejected to keep aliases distinguishable from version numbers
	aliasRegex   = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)
	numericRegex = regexp.MustCompile(`^\d+$`)

	// Tag key format: printable identifier without whitespace
	tagKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)
)

const (
	maxNameLength        = 256
	maxDescriptionLength = 1000
	maxTagKeyLength      = 250
	maxTagValueLength    = 5000
	maxTemplateLength    = 100000
)

// ValidateName validates the format of a prompt name
func ValidateName(name string) error {
	if name == "" {
		return goerr.New("prompt name cannot be empty", goerr.T(apperr.ErrTagValidation))
	}

	if len(name) > maxNameLength {
		return goerr.New("prompt name is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max_length", maxNameLength),
			goerr.TV(apperr.PromptNameKey, name))
	}

	if !promptNameRegex.MatchString(name) {
		return goerr.New("prompt name format is invalid",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("format", "alphanumeric characters with '_', '-', '.' allowed except at beginning and end"),
			goerr.TV(apperr.PromptNameKey, name))
	}

	return nil
}

// ValidateVersion validates the format of a version string
func ValidateVersion(version string) error {
	if version == "" {
		return goerr.New("version cannot be empty", goerr.T(apperr.ErrTagValidation))
	}

	n, err := strconv.Atoi(version)
	if err != nil || n < 1 {
		return goerr.New("version format is invalid",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("format", "positive decimal integer"),
			goerr.TV(apperr.VersionKey, version))
	}

	return nil
}

// ValidateAlias validates the format of an alias name
func ValidateAlias(alias string) error {
	if alias == "" {
		return goerr.New("alias cannot be empty", goerr.T(apperr.ErrTagValidation))
	}

	if len(alias) > maxNameLength {
		return goerr.New("alias is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max_length", maxNameLength),
			goerr.TV(apperr.AliasKey, alias))
	}

	if numericRegex.MatchString(alias) {
		return goerr.New("alias cannot be a number",
			goerr.T(apperr.ErrTagValidation),
			goerr.TV(apperr.AliasKey, alias))
	}

	if !aliasRegex.MatchString(alias) {
		return goerr.New("alias format is invalid",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("format", "alphanumeric characters with '_', '-', '.' allowed except at beginning and end"),
			goerr.TV(apperr.AliasKey, alias))
	}

	return nil
}

// ValidateTagKey validates the format of a tag key
func ValidateTagKey(key string) error {
	if key == "" {
		return goerr.New("tag key cannot be empty", goerr.T(apperr.ErrTagValidation))
	}

	if len(key) > maxTagKeyLength {
		return goerr.New("tag key is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max_length", maxTagKeyLength),
			goerr.TV(apperr.TagKeyKey, key))
	}

	if !tagKeyRegex.MatchString(key) {
		return goerr.New("tag key format is invalid",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("format", "alphanumeric characters with '.', '_', '/', '-'"),
			goerr.TV(apperr.TagKeyKey, key))
	}

	return nil
}

// ValidateTagValue validates a tag value
func ValidateTagValue(value string) error {
	if len(value) > maxTagValueLength {
		return goerr.New("tag value is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max_length", maxTagValueLength))
	}

	return nil
}

// ValidatePrompt validates the Prompt struct
func ValidatePrompt(p *Prompt) error {
	if err := ValidateName(p.Name); err != nil {
		return goerr.Wrap(err, "invalid prompt name")
	}

	if len(p.Description) > maxDescriptionLength {
		return goerr.New("prompt description is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max_length", maxDescriptionLength))
	}

	for _, t := range p.Tags {
		if err := ValidateTagKey(t.Key); err != nil {
			return goerr.Wrap(err, "invalid tag key")
		}
		if err := ValidateTagValue(t.Value); err != nil {
			return goerr.Wrap(err, "invalid tag value")
		}
	}

	return nil
}

// ValidatePromptVersion validates the PromptVersion struct
func ValidatePromptVersion(v *PromptVersion) error {
	if err := ValidateVersion(v.Version); err != nil {
		return goerr.Wrap(err, "invalid version")
	}

	if len(v.Template) > maxTemplateLength {
		return goerr.New("template is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max_length", maxTemplateLength))
	}

	if len(v.Description) > maxDescriptionLength {
		return goerr.New("version description is too long",
			goerr.T(apperr.ErrTagValidation),
			goerr.V("max_length", maxDescriptionLength))
	}

	for _, t := range v.Tags {
		if err := ValidateTagKey(t.Key); err != nil {
			return goerr.Wrap(err, "invalid tag key")
		}
		if err := ValidateTagValue(t.Value); err != nil {
			return goerr.Wrap(err, "invalid tag value")
		}
	}

	return nil
}
