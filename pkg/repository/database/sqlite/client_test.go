package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	gt.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("2026-08-31T12:00:00.000000001Z")
	gt.NoError(t, err)
	gt.False(t, ts.IsZero())

	_, err = parseTime("not-a-timestamp")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, apperr.ErrTagDatabase))
}

func TestCorruptedTimestampColumn(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	gt.NoError(t, c.CreatePrompt(ctx, &prompt.Prompt{Name: "greeting"}))

	_, err := c.db.ExecContext(ctx, `UPDATE prompts SET updated_at = 'garbage' WHERE name = ?`, "greeting")
	gt.NoError(t, err)

	// A row the registry cannot interpret must fail loudly, not read as zero time
	_, err = c.GetPromptByName(ctx, "greeting")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, apperr.ErrTagDatabase))
}
