package prompt_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
)

func TestValidateName(t *testing.T) {
	valid := []string{
		"greeting",
		"qa-bot",
		"team.summarizer_v2",
		"a",
		"A1.b2-c3_d4",
	}
	for _, name := range valid {
		t.Run("valid/"+name, func(t *testing.T) {
			gt.NoError(t, prompt.ValidateName(name))
		})
	}

	invalid := []string{
		"",
		"-leading",
		"trailing-",
		".leading",
		"trailing.",
		"has space",
		"has/slash",
		"has@symbol",
		strings.Repeat("a", 257),
	}
	for _, name := range invalid {
		t.Run("invalid/"+name, func(t *testing.T) {
			gt.Error(t, prompt.ValidateName(name))
		})
	}
}

func TestValidateVersion(t *testing.T) {
	for _, v := range []string{"1", "2", "42", "1000"} {
		gt.NoError(t, prompt.ValidateVersion(v))
	}
	for _, v := range []string{"", "0", "-1", "1.0", "v1", "01x", "latest"} {
		gt.Error(t, prompt.ValidateVersion(v))
	}
}

func TestValidateAlias(t *testing.T) {
	for _, a := range []string{"live", "stable", "canary-2", "v1.2"} {
		gt.NoError(t, prompt.ValidateAlias(a))
	}

	// Purely numeric aliases would be indistinguishable from versions
	for _, a := range []string{"", "7", "123", "-live", "live-"} {
		gt.Error(t, prompt.ValidateAlias(a))
	}
}

func TestValidateTag(t *testing.T) {
	gt.NoError(t, prompt.ValidateTagKey("env"))
	gt.NoError(t, prompt.ValidateTagKey("team/owner"))
	gt.NoError(t, prompt.ValidateTagValue("anything goes, including spaces"))
	gt.NoError(t, prompt.ValidateTagValue(""))

	gt.Error(t, prompt.ValidateTagKey(""))
	gt.Error(t, prompt.ValidateTagKey("bad key"))
	gt.Error(t, prompt.ValidateTagKey(strings.Repeat("k", 251)))
	gt.Error(t, prompt.ValidateTagValue(strings.Repeat("v", 5001)))
}

func TestValidatePromptVersion_TemplateLimit(t *testing.T) {
	v := &prompt.PromptVersion{
		PromptName: "greeting",
		Version:    "1",
		Template:   strings.Repeat("x", 100001),
	}
	gt.Error(t, prompt.ValidatePromptVersion(v))

	v.Template = "ok"
	gt.NoError(t, prompt.ValidatePromptVersion(v))
}
