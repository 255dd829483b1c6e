package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const timeFormat = time.RFC3339Nano

// CreatePrompt creates a new prompt with its tags and aliases
func (c *Client) CreatePrompt(ctx context.Context, p *prompt.Prompt) error {
	if p == nil {
		return goerr.New("prompt cannot be nil")
	}

	if !p.ID.IsValid() {
		p.ID = types.NewUUID(ctx)
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	return c.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompts WHERE name = ?`, p.Name).Scan(&exists)
		if err != nil {
			return goerr.Wrap(err, "failed to check prompt name", goerr.T(apperr.ErrTagDatabase))
		}
		if exists > 0 {
			return goerr.Wrap(prompt.ErrPromptAlreadyExists, "name is taken",
				goerr.TV(apperr.PromptNameKey, p.Name))
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO prompts (id, name, description, latest, version_seq, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID.String(), p.Name, p.Description, p.Latest, p.VersionSeq,
			p.CreatedAt.Format(timeFormat), p.UpdatedAt.Format(timeFormat))
		if err != nil {
			return goerr.Wrap(err, "failed to insert prompt",
				goerr.T(apperr.ErrTagDatabase), goerr.TV(apperr.PromptNameKey, p.Name))
		}

		return c.replaceAnnotations(ctx, tx, p)
	})
}

// GetPrompt retrieves a prompt by internal ID
func (c *Client) GetPrompt(ctx context.Context, id types.UUID) (*prompt.Prompt, error) {
	if !id.IsValid() {
		return nil, goerr.New("invalid prompt ID")
	}

	return c.loadPrompt(ctx, c.db, `WHERE id = ?`, id.String(), goerr.TV(apperr.PromptUUIDKey, id))
}

// GetPromptByName retrieves a prompt by name
func (c *Client) GetPromptByName(ctx context.Context, name string) (*prompt.Prompt, error) {
	if name == "" {
		return nil, goerr.New("prompt name cannot be empty")
	}

	return c.loadPromptByName(ctx, c.db, name)
}

// UpdatePrompt updates a prompt's mutable fields, tags, and aliases. The
// name, creation time, and version counter are preserved.
func (c *Client) UpdatePrompt(ctx context.Context, p *prompt.Prompt) error {
	if p == nil {
		return goerr.New("prompt cannot be nil")
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := c.loadPromptByName(ctx, tx, p.Name)
		if err != nil {
			return err
		}

		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.VersionSeq = existing.VersionSeq
		p.UpdatedAt = time.Now()

		_, err = tx.ExecContext(ctx,
			`UPDATE prompts SET description = ?, latest = ?, updated_at = ? WHERE id = ?`,
			p.Description, p.Latest, p.UpdatedAt.Format(timeFormat), p.ID.String())
		if err != nil {
			return goerr.Wrap(err, "failed to update prompt",
				goerr.T(apperr.ErrTagDatabase), goerr.TV(apperr.PromptNameKey, p.Name))
		}

		return c.replaceAnnotations(ctx, tx, p)
	})
}

// DeletePrompt deletes a prompt; versions, tags, and aliases cascade via
// foreign keys
func (c *Client) DeletePrompt(ctx context.Context, name string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM prompts WHERE name = ?`, name)
		if err != nil {
			return goerr.Wrap(err, "failed to delete prompt",
				goerr.T(apperr.ErrTagDatabase), goerr.TV(apperr.PromptNameKey, name))
		}

		n, err := res.RowsAffected()
		if err != nil {
			return goerr.Wrap(err, "failed to read affected rows", goerr.T(apperr.ErrTagDatabase))
		}
		if n == 0 {
			return goerr.Wrap(prompt.ErrPromptNotFound, "no such prompt",
				goerr.TV(apperr.PromptNameKey, name))
		}

		return nil
	})
}

// ListPrompts returns prompts ordered by name ascending, strictly after
// afterName. limit 0 means no limit.
func (c *Client) ListPrompts(ctx context.Context, afterName string, limit int) ([]*prompt.Prompt, error) {
	if limit < 0 {
		return nil, goerr.New("limit must be non-negative")
	}

	query := `SELECT name FROM prompts WHERE name > ? ORDER BY name ASC`
	args := []any{afterName}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list prompts", goerr.T(apperr.ErrTagDatabase))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, goerr.Wrap(err, "failed to scan prompt name", goerr.T(apperr.ErrTagDatabase))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate prompts", goerr.T(apperr.ErrTagDatabase))
	}

	prompts := make([]*prompt.Prompt, 0, len(names))
	for _, name := range names {
		p, err := c.loadPromptByName(ctx, c.db, name)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}

	return prompts, nil
}

// CreatePromptVersion appends a new version, allocating the next number from
// the prompt's monotonic counter
func (c *Client) CreatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error {
	if v == nil {
		return goerr.New("prompt version cannot be nil")
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		p, err := c.loadPromptByName(ctx, tx, v.PromptName)
		if err != nil {
			return err
		}

		seq := p.VersionSeq + 1
		v.Version = strconv.Itoa(seq)
		v.PromptUUID = p.ID

		now := time.Now()
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		v.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			`INSERT INTO prompt_versions (prompt_id, version, template, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID.String(), seq, v.Template, v.Description,
			v.CreatedAt.Format(timeFormat), v.UpdatedAt.Format(timeFormat))
		if err != nil {
			return goerr.Wrap(err, "failed to insert version",
				goerr.T(apperr.ErrTagDatabase),
				goerr.TV(apperr.PromptNameKey, v.PromptName),
				goerr.TV(apperr.VersionKey, v.Version))
		}

		for _, t := range v.Tags {
			if err := insertVersionTag(ctx, tx, p.ID, seq, t); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE prompts SET latest = ?, version_seq = ?, updated_at = ? WHERE id = ?`,
			v.Version, seq, now.Format(timeFormat), p.ID.String())
		if err != nil {
			return goerr.Wrap(err, "failed to advance version counter",
				goerr.T(apperr.ErrTagDatabase), goerr.TV(apperr.PromptNameKey, v.PromptName))
		}

		return nil
	})
}

// GetPromptVersion retrieves a specific version of a prompt
func (c *Client) GetPromptVersion(ctx context.Context, name, version string) (*prompt.PromptVersion, error) {
	if version == "" {
		return nil, goerr.New("version cannot be empty")
	}

	p, err := c.loadPromptByName(ctx, c.db, name)
	if err != nil {
		return nil, err
	}

	return c.loadVersion(ctx, c.db, p, version)
}

// UpdatePromptVersion updates the mutable fields of an existing version. The
// template and creation time are preserved.
func (c *Client) UpdatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error {
	if v == nil {
		return goerr.New("prompt version cannot be nil")
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		p, err := c.loadPromptByName(ctx, tx, v.PromptName)
		if err != nil {
			return err
		}

		existing, err := c.loadVersion(ctx, tx, p, v.Version)
		if err != nil {
			return err
		}

		v.PromptUUID = p.ID
		v.Template = existing.Template // Template is immutable
		v.CreatedAt = existing.CreatedAt
		v.UpdatedAt = time.Now()

		num := existing.VersionNumber()

		_, err = tx.ExecContext(ctx,
			`UPDATE prompt_versions SET description = ?, updated_at = ? WHERE prompt_id = ? AND version = ?`,
			v.Description, v.UpdatedAt.Format(timeFormat), p.ID.String(), num)
		if err != nil {
			return goerr.Wrap(err, "failed to update version",
				goerr.T(apperr.ErrTagDatabase),
				goerr.TV(apperr.PromptNameKey, v.PromptName),
				goerr.TV(apperr.VersionKey, v.Version))
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM prompt_version_tags WHERE prompt_id = ? AND version = ?`,
			p.ID.String(), num); err != nil {
			return goerr.Wrap(err, "failed to clear version tags", goerr.T(apperr.ErrTagDatabase))
		}
		for _, t := range v.Tags {
			if err := insertVersionTag(ctx, tx, p.ID, num, t); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE prompts SET updated_at = ? WHERE id = ?`,
			v.UpdatedAt.Format(timeFormat), p.ID.String())
		if err != nil {
			return goerr.Wrap(err, "failed to touch prompt", goerr.T(apperr.ErrTagDatabase))
		}

		return nil
	})
}

// DeletePromptVersion deletes a version, removes any alias pointing at it,
// and recomputes the latest version marker
func (c *Client) DeletePromptVersion(ctx context.Context, name, version string) error {
	num, err := strconv.Atoi(version)
	if err != nil {
		return goerr.Wrap(prompt.ErrVersionNotFound, "malformed version",
			goerr.TV(apperr.PromptNameKey, name),
			goerr.TV(apperr.VersionKey, version))
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		p, err := c.loadPromptByName(ctx, tx, name)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM prompt_versions WHERE prompt_id = ? AND version = ?`,
			p.ID.String(), num)
		if err != nil {
			return goerr.Wrap(err, "failed to delete version", goerr.T(apperr.ErrTagDatabase))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return goerr.Wrap(err, "failed to read affected rows", goerr.T(apperr.ErrTagDatabase))
		}
		if n == 0 {
			return goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
				goerr.TV(apperr.PromptNameKey, name),
				goerr.TV(apperr.VersionKey, version))
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM prompt_aliases WHERE prompt_id = ? AND version = ?`,
			p.ID.String(), num); err != nil {
			return goerr.Wrap(err, "failed to remove aliases of deleted version",
				goerr.T(apperr.ErrTagDatabase))
		}

		var latest sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(version) FROM prompt_versions WHERE prompt_id = ?`,
			p.ID.String()).Scan(&latest); err != nil {
			return goerr.Wrap(err, "failed to find latest version", goerr.T(apperr.ErrTagDatabase))
		}

		latestStr := ""
		if latest.Valid {
			latestStr = strconv.FormatInt(latest.Int64, 10)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE prompts SET latest = ?, updated_at = ? WHERE id = ?`,
			latestStr, time.Now().Format(timeFormat), p.ID.String())
		if err != nil {
			return goerr.Wrap(err, "failed to update latest marker", goerr.T(apperr.ErrTagDatabase))
		}

		return nil
	})
}

// ListPromptVersions returns versions ordered by numeric version ascending,
// strictly after afterVersion. limit 0 means no limit.
func (c *Client) ListPromptVersions(ctx context.Context, name string, afterVersion int, limit int) ([]*prompt.PromptVersion, error) {
	if limit < 0 {
		return nil, goerr.New("limit must be non-negative")
	}

	p, err := c.loadPromptByName(ctx, c.db, name)
	if err != nil {
		return nil, err
	}

	query := `SELECT version FROM prompt_versions WHERE prompt_id = ? AND version > ? ORDER BY version ASC`
	args := []any{p.ID.String(), afterVersion}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list versions", goerr.T(apperr.ErrTagDatabase))
	}
	defer rows.Close()

	var nums []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to scan version number", goerr.T(apperr.ErrTagDatabase))
		}
		nums = append(nums, n)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate versions", goerr.T(apperr.ErrTagDatabase))
	}

	versions := make([]*prompt.PromptVersion, 0, len(nums))
	for _, n := range nums {
		v, err := c.loadVersion(ctx, c.db, p, strconv.Itoa(n))
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}

	return versions, nil
}

// loadPromptByName reads one prompt row by name, carrying the name on the
// not-found error so callers surface which prompt was missing
func (c *Client) loadPromptByName(ctx context.Context, q querier, name string) (*prompt.Prompt, error) {
	return c.loadPrompt(ctx, q, `WHERE name = ?`, name,
		goerr.TV(apperr.PromptNameKey, name))
}

// loadPrompt reads one prompt row plus its tags and aliases. notFound
// options annotate the error when the row does not exist.
func (c *Client) loadPrompt(ctx context.Context, q querier, where string, arg any, notFound ...goerr.Option) (*prompt.Prompt, error) {
	var (
		p                  prompt.Prompt
		id                 string
		createdAt, updated string
	)

	err := q.QueryRowContext(ctx,
		`SELECT id, name, description, latest, version_seq, created_at, updated_at FROM prompts `+where,
		arg).Scan(&id, &p.Name, &p.Description, &p.Latest, &p.VersionSeq, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(prompt.ErrPromptNotFound, "no such prompt", notFound...)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load prompt", goerr.T(apperr.ErrTagDatabase))
	}

	p.ID = types.UUID(id)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT key, value FROM prompt_tags WHERE prompt_id = ?`, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load prompt tags", goerr.T(apperr.ErrTagDatabase))
	}
	defer rows.Close()
	for rows.Next() {
		var t prompt.Tag
		if err := rows.Scan(&t.Key, &t.Value); err != nil {
			return nil, goerr.Wrap(err, "failed to scan tag", goerr.T(apperr.ErrTagDatabase))
		}
		p.Tags = append(p.Tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tags", goerr.T(apperr.ErrTagDatabase))
	}
	sort.Slice(p.Tags, func(i, j int) bool { return p.Tags[i].Key < p.Tags[j].Key })

	aliasRows, err := q.QueryContext(ctx,
		`SELECT alias, version FROM prompt_aliases WHERE prompt_id = ? ORDER BY alias ASC`, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load aliases", goerr.T(apperr.ErrTagDatabase))
	}
	defer aliasRows.Close()
	for aliasRows.Next() {
		var (
			a   prompt.Alias
			num int
		)
		if err := aliasRows.Scan(&a.Alias, &num); err != nil {
			return nil, goerr.Wrap(err, "failed to scan alias", goerr.T(apperr.ErrTagDatabase))
		}
		a.Version = strconv.Itoa(num)
		p.Aliases = append(p.Aliases, a)
	}
	if err := aliasRows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate aliases", goerr.T(apperr.ErrTagDatabase))
	}

	return &p, nil
}

// loadVersion reads one version row plus its tags and the aliases pointing at it
func (c *Client) loadVersion(ctx context.Context, q querier, p *prompt.Prompt, version string) (*prompt.PromptVersion, error) {
	num, err := strconv.Atoi(version)
	if err != nil {
		return nil, goerr.Wrap(prompt.ErrVersionNotFound, "malformed version",
			goerr.TV(apperr.PromptNameKey, p.Name),
			goerr.TV(apperr.VersionKey, version))
	}

	var (
		v                  prompt.PromptVersion
		createdAt, updated string
	)

	err = q.QueryRowContext(ctx,
		`SELECT template, description, created_at, updated_at FROM prompt_versions
		 WHERE prompt_id = ? AND version = ?`,
		p.ID.String(), num).Scan(&v.Template, &v.Description, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
			goerr.TV(apperr.PromptNameKey, p.Name),
			goerr.TV(apperr.VersionKey, version))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load version", goerr.T(apperr.ErrTagDatabase))
	}

	v.PromptUUID = p.ID
	v.PromptName = p.Name
	v.Version = version
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if v.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT key, value FROM prompt_version_tags WHERE prompt_id = ? AND version = ? ORDER BY key ASC`,
		p.ID.String(), num)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load version tags", goerr.T(apperr.ErrTagDatabase))
	}
	defer rows.Close()
	for rows.Next() {
		var t prompt.Tag
		if err := rows.Scan(&t.Key, &t.Value); err != nil {
			return nil, goerr.Wrap(err, "failed to scan version tag", goerr.T(apperr.ErrTagDatabase))
		}
		v.Tags = append(v.Tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate version tags", goerr.T(apperr.ErrTagDatabase))
	}

	for _, a := range p.Aliases {
		if a.Version == version {
			v.Aliases = append(v.Aliases, a.Alias)
		}
	}

	return &v, nil
}

// replaceAnnotations rewrites the tag and alias rows from the prompt struct
func (c *Client) replaceAnnotations(ctx context.Context, tx *sql.Tx, p *prompt.Prompt) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM prompt_tags WHERE prompt_id = ?`, p.ID.String()); err != nil {
		return goerr.Wrap(err, "failed to clear tags", goerr.T(apperr.ErrTagDatabase))
	}
	for _, t := range p.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prompt_tags (prompt_id, key, value) VALUES (?, ?, ?)`,
			p.ID.String(), t.Key, t.Value); err != nil {
			return goerr.Wrap(err, "failed to insert tag",
				goerr.T(apperr.ErrTagDatabase), goerr.TV(apperr.TagKeyKey, t.Key))
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM prompt_aliases WHERE prompt_id = ?`, p.ID.String()); err != nil {
		return goerr.Wrap(err, "failed to clear aliases", goerr.T(apperr.ErrTagDatabase))
	}
	for _, a := range p.Aliases {
		num, err := strconv.Atoi(a.Version)
		if err != nil {
			return goerr.Wrap(prompt.ErrVersionNotFound, "alias target is malformed",
				goerr.TV(apperr.AliasKey, a.Alias),
				goerr.TV(apperr.VersionKey, a.Version))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prompt_aliases (prompt_id, alias, version) VALUES (?, ?, ?)`,
			p.ID.String(), a.Alias, num); err != nil {
			return goerr.Wrap(err, "failed to insert alias",
				goerr.T(apperr.ErrTagDatabase), goerr.TV(apperr.AliasKey, a.Alias))
		}
	}

	return nil
}

func insertVersionTag(ctx context.Context, tx *sql.Tx, id types.UUID, version int, t prompt.Tag) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO prompt_version_tags (prompt_id, version, key, value) VALUES (?, ?, ?, ?)`,
		id.String(), version, t.Key, t.Value); err != nil {
		return goerr.Wrap(err, "failed to insert version tag",
			goerr.T(apperr.ErrTagDatabase), goerr.TV(apperr.TagKeyKey, t.Key))
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "corrupted timestamp column",
			goerr.T(apperr.ErrTagDatabase), goerr.V("value", s))
	}
	return t, nil
}
