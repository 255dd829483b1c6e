package filter_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/service/filter"
)

func TestParseEmpty(t *testing.T) {
	pred, err := filter.Parse("")
	gt.NoError(t, err)
	gt.True(t, pred(filter.Target{Name: "anything"}))

	pred, err = filter.Parse("   ")
	gt.NoError(t, err)
	gt.True(t, pred(filter.Target{}))
}

func TestParseEquality(t *testing.T) {
	pred, err := filter.Parse("name = 'greeting'")
	gt.NoError(t, err)

	gt.True(t, pred(filter.Target{Name: "greeting"}))
	gt.False(t, pred(filter.Target{Name: "farewell"}))
	gt.False(t, pred(filter.Target{Name: "Greeting"})) // `=` is case sensitive
}

func TestParseInequality(t *testing.T) {
	pred, err := filter.Parse("name != 'greeting'")
	gt.NoError(t, err)

	gt.False(t, pred(filter.Target{Name: "greeting"}))
	gt.True(t, pred(filter.Target{Name: "farewell"}))
}

func TestParseLike(t *testing.T) {
	pred, err := filter.Parse("name LIKE '%bot%'")
	gt.NoError(t, err)

	gt.True(t, pred(filter.Target{Name: "qa-bot"}))
	gt.True(t, pred(filter.Target{Name: "bot"}))
	gt.True(t, pred(filter.Target{Name: "bottle-opener"}))
	gt.False(t, pred(filter.Target{Name: "QA-Bot"})) // LIKE is case sensitive
	gt.False(t, pred(filter.Target{Name: "assistant"}))
}

func TestParseLikeAnchored(t *testing.T) {
	pred, err := filter.Parse("name LIKE 'qa%'")
	gt.NoError(t, err)

	gt.True(t, pred(filter.Target{Name: "qa-bot"}))
	gt.False(t, pred(filter.Target{Name: "my-qa-bot"}))
}

func TestParseILike(t *testing.T) {
	pred, err := filter.Parse("description ILIKE '%SUMMARY%'")
	gt.NoError(t, err)

	gt.True(t, pred(filter.Target{Description: "Generates a summary"}))
	gt.False(t, pred(filter.Target{Description: "Translates text"}))
}

func TestParseTagClause(t *testing.T) {
	pred, err := filter.Parse("tag.env = 'prod'")
	gt.NoError(t, err)

	gt.True(t, pred(filter.Target{Tags: map[string]string{"env": "prod"}}))
	gt.False(t, pred(filter.Target{Tags: map[string]string{"env": "dev"}}))
	gt.False(t, pred(filter.Target{Tags: map[string]string{}}))
	gt.False(t, pred(filter.Target{}))
}

func TestMissingTagNeverMatches(t *testing.T) {
	// A missing tag does not satisfy "!=" either
	pred, err := filter.Parse("tag.env != 'prod'")
	gt.NoError(t, err)

	gt.True(t, pred(filter.Target{Tags: map[string]string{"env": "dev"}}))
	gt.False(t, pred(filter.Target{}))
}

func TestParseConjunction(t *testing.T) {
	pred, err := filter.Parse("name LIKE 'qa%' AND tag.env = 'prod' AND description != ''")
	gt.NoError(t, err)

	gt.True(t, pred(filter.Target{
		Name:        "qa-bot",
		Description: "answers questions",
		Tags:        map[string]string{"env": "prod", "team": "ml"},
	}))
	gt.False(t, pred(filter.Target{
		Name:        "qa-bot",
		Description: "answers questions",
		Tags:        map[string]string{"env": "dev"},
	}))
	gt.False(t, pred(filter.Target{
		Name: "qa-bot",
		Tags: map[string]string{"env": "prod"},
	}))
}

func TestParseKeywordCase(t *testing.T) {
	pred, err := filter.Parse("NAME = 'x' and TAG.team = 'ml'")
	gt.NoError(t, err)
	gt.True(t, pred(filter.Target{Name: "x", Tags: map[string]string{"team": "ml"}}))
}

func TestParseQuoteEscape(t *testing.T) {
	pred, err := filter.Parse("description = 'it''s here'")
	gt.NoError(t, err)
	gt.True(t, pred(filter.Target{Description: "it's here"}))
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		title string
		expr  string
	}{
		{"unknown field", "color = 'red'"},
		{"missing operator", "name 'x'"},
		{"missing value", "name ="},
		{"unquoted value", "name = x"},
		{"unterminated string", "name = 'x"},
		{"bad operator", "name ~ 'x'"},
		{"dangling AND", "name = 'x' AND"},
		{"missing AND", "name = 'x' name = 'y'"},
		{"lone bang", "name ! 'x'"},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			_, err := filter.Parse(tc.expr)
			gt.Error(t, err)
		})
	}
}
