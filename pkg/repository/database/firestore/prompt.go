package firestore

import (
	"context"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/model/prompt"
	"github.com/m-kurita/promptreg/pkg/domain/types"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Prompt Firestore document structure. Tags and aliases are embedded maps so
// every prompt-level mutation is a single document write.
type promptDoc struct {
	ID          string            `firestore:"id"`
	Name        string            `firestore:"name"`
	Description string            `firestore:"description"`
	Tags        map[string]string `firestore:"tags"`
	Aliases     map[string]string `firestore:"aliases"` // alias -> version
	Latest      string            `firestore:"latest"`
	VersionSeq  int               `firestore:"version_seq"`
	CreatedAt   time.Time         `firestore:"created_at"`
	UpdatedAt   time.Time         `firestore:"updated_at"`
}

// PromptVersion Firestore document structure
type versionDoc struct {
	PromptUUID  string            `firestore:"prompt_uuid"`
	Version     string            `firestore:"version"`
	Template    string            `firestore:"template"`
	Description string            `firestore:"description"`
	Tags        map[string]string `firestore:"tags"`
	CreatedAt   time.Time         `firestore:"created_at"`
	UpdatedAt   time.Time         `firestore:"updated_at"`
}

func toPromptDoc(p *prompt.Prompt) *promptDoc {
	doc := &promptDoc{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Tags:        make(map[string]string, len(p.Tags)),
		Aliases:     make(map[string]string, len(p.Aliases)),
		Latest:      p.Latest,
		VersionSeq:  p.VersionSeq,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, t := range p.Tags {
		doc.Tags[t.Key] = t.Value
	}
	for _, a := range p.Aliases {
		doc.Aliases[a.Alias] = a.Version
	}
	return doc
}

func (d *promptDoc) toModel() *prompt.Prompt {
	p := &prompt.Prompt{
		ID:          types.UUID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Latest:      d.Latest,
		VersionSeq:  d.VersionSeq,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for k, v := range d.Tags {
		p.Tags = append(p.Tags, prompt.Tag{Key: k, Value: v})
	}
	sort.Slice(p.Tags, func(i, j int) bool { return p.Tags[i].Key < p.Tags[j].Key })
	for a, v := range d.Aliases {
		p.Aliases = append(p.Aliases, prompt.Alias{Alias: a, Version: v})
	}
	sort.Slice(p.Aliases, func(i, j int) bool { return p.Aliases[i].Alias < p.Aliases[j].Alias })
	return p
}

func (d *versionDoc) toModel(p *prompt.Prompt) *prompt.PromptVersion {
	v := &prompt.PromptVersion{
		PromptUUID:  types.UUID(d.PromptUUID),
		PromptName:  p.Name,
		Version:     d.Version,
		Template:    d.Template,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for k, val := range d.Tags {
		v.Tags = append(v.Tags, prompt.Tag{Key: k, Value: val})
	}
	sort.Slice(v.Tags, func(i, j int) bool { return v.Tags[i].Key < v.Tags[j].Key })
	for _, a := range p.Aliases {
		if a.Version == d.Version {
			v.Aliases = append(v.Aliases, a.Alias)
		}
	}
	sort.Strings(v.Aliases)
	return v
}

// CreatePrompt creates a new prompt, failing when the name is taken
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

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := c.findByNameTx(tx, p.Name); err == nil {
			return goerr.Wrap(prompt.ErrPromptAlreadyExists, "name is taken",
				goerr.TV(apperr.PromptNameKey, p.Name))
		}
		return tx.Set(c.client.Collection(collectionPrompts).Doc(p.ID.String()), toPromptDoc(p))
	})
	if err != nil {
		return wrapFirestoreErr(err, "failed to create prompt", p.Name)
	}

	return nil
}

// GetPrompt retrieves a prompt by internal ID
func (c *Client) GetPrompt(ctx context.Context, id types.UUID) (*prompt.Prompt, error) {
	if !id.IsValid() {
		return nil, goerr.New("invalid prompt ID")
	}

	snap, err := c.client.Collection(collectionPrompts).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(prompt.ErrPromptNotFound, "no such prompt",
				goerr.TV(apperr.PromptUUIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get prompt",
			goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.PromptUUIDKey, id))
	}

	var doc promptDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode prompt",
			goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.DocumentIDKey, snap.Ref.ID))
	}

	return doc.toModel(), nil
}

// GetPromptByName retrieves a prompt by name
func (c *Client) GetPromptByName(ctx context.Context, name string) (*prompt.Prompt, error) {
	if name == "" {
		return nil, goerr.New("prompt name cannot be empty")
	}

	iter := c.client.Collection(collectionPrompts).
		Where("name", "==", name).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(prompt.ErrPromptNotFound, "no such prompt",
			goerr.TV(apperr.PromptNameKey, name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query prompt",
			goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.PromptNameKey, name))
	}

	var doc promptDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode prompt",
			goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.DocumentIDKey, snap.Ref.ID))
	}

	return doc.toModel(), nil
}

// UpdatePrompt updates a prompt's mutable fields, tags, and aliases
func (c *Client) UpdatePrompt(ctx context.Context, p *prompt.Prompt) error {
	if p == nil {
		return goerr.New("prompt cannot be nil")
	}

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := c.findByNameTx(tx, p.Name)
		if err != nil {
			return err
		}

		p.ID = types.UUID(existing.ID)
		p.CreatedAt = existing.CreatedAt
		p.VersionSeq = existing.VersionSeq
		p.UpdatedAt = time.Now()

		return tx.Set(c.client.Collection(collectionPrompts).Doc(existing.ID), toPromptDoc(p))
	})
	if err != nil {
		return wrapFirestoreErr(err, "failed to update prompt", p.Name)
	}

	return nil
}

// DeletePrompt deletes a prompt and all of its version documents
func (c *Client) DeletePrompt(ctx context.Context, name string) error {
	p, err := c.GetPromptByName(ctx, name)
	if err != nil {
		return err
	}

	ref := c.client.Collection(collectionPrompts).Doc(p.ID.String())

	// Delete version documents first; the prompt document goes last so a
	// partial failure never leaves orphaned versions behind a deleted prompt.
	iter := ref.Collection(subCollectionVersions).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate versions",
				goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.PromptNameKey, name))
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete version document",
				goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.DocumentIDKey, snap.Ref.ID))
		}
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete prompt",
			goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.PromptNameKey, name))
	}

	return nil
}

// ListPrompts returns prompts ordered by name ascending, strictly after
// afterName. limit 0 means no limit.
func (c *Client) ListPrompts(ctx context.Context, afterName string, limit int) ([]*prompt.Prompt, error) {
	if limit < 0 {
		return nil, goerr.New("limit must be non-negative")
	}

	query := c.client.Collection(collectionPrompts).OrderBy("name", firestore.Asc)
	if afterName != "" {
		query = query.StartAfter(afterName)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var prompts []*prompt.Prompt
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list prompts", goerr.T(apperr.ErrTagFirestore))
		}

		var doc promptDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode prompt",
				goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.DocumentIDKey, snap.Ref.ID))
		}
		prompts = append(prompts, doc.toModel())
	}

	return prompts, nil
}

// CreatePromptVersion appends a new version, allocating the next number from
// the prompt's monotonic counter inside a transaction
func (c *Client) CreatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error {
	if v == nil {
		return goerr.New("prompt version cannot be nil")
	}

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := c.findByNameTx(tx, v.PromptName)
		if err != nil {
			return err
		}

		doc.VersionSeq++
		v.Version = strconv.Itoa(doc.VersionSeq)
		v.PromptUUID = types.UUID(doc.ID)

		now := time.Now()
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		v.UpdatedAt = now

		doc.Latest = v.Version
		doc.UpdatedAt = now

		ref := c.client.Collection(collectionPrompts).Doc(doc.ID)
		vd := &versionDoc{
			PromptUUID:  doc.ID,
			Version:     v.Version,
			Template:    v.Template,
			Description: v.Description,
			Tags:        make(map[string]string, len(v.Tags)),
			CreatedAt:   v.CreatedAt,
			UpdatedAt:   v.UpdatedAt,
		}
		for _, t := range v.Tags {
			vd.Tags[t.Key] = t.Value
		}

		if err := tx.Set(ref.Collection(subCollectionVersions).Doc(v.Version), vd); err != nil {
			return goerr.Wrap(err, "failed to write version document",
				goerr.TV(apperr.VersionKey, v.Version))
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return wrapFirestoreErr(err, "failed to create version", v.PromptName)
	}

	return nil
}

// GetPromptVersion retrieves a specific version of a prompt
func (c *Client) GetPromptVersion(ctx context.Context, name, version string) (*prompt.PromptVersion, error) {
	if version == "" {
		return nil, goerr.New("version cannot be empty")
	}

	p, err := c.GetPromptByName(ctx, name)
	if err != nil {
		return nil, err
	}

	snap, err := c.client.Collection(collectionPrompts).Doc(p.ID.String()).
		Collection(subCollectionVersions).Doc(version).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
				goerr.TV(apperr.PromptNameKey, name),
				goerr.TV(apperr.VersionKey, version))
		}
		return nil, goerr.Wrap(err, "failed to get version",
			goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.VersionKey, version))
	}

	var doc versionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode version",
			goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.DocumentIDKey, snap.Ref.ID))
	}

	return doc.toModel(p), nil
}

// UpdatePromptVersion updates the mutable fields of an existing version
func (c *Client) UpdatePromptVersion(ctx context.Context, v *prompt.PromptVersion) error {
	if v == nil {
		return goerr.New("prompt version cannot be nil")
	}

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		pd, err := c.findByNameTx(tx, v.PromptName)
		if err != nil {
			return err
		}

		ref := c.client.Collection(collectionPrompts).Doc(pd.ID)
		vref := ref.Collection(subCollectionVersions).Doc(v.Version)

		snap, err := tx.Get(vref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
					goerr.TV(apperr.PromptNameKey, v.PromptName),
					goerr.TV(apperr.VersionKey, v.Version))
			}
			return goerr.Wrap(err, "failed to get version", goerr.TV(apperr.VersionKey, v.Version))
		}

		var existing versionDoc
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode version",
				goerr.TV(apperr.DocumentIDKey, snap.Ref.ID))
		}

		v.PromptUUID = types.UUID(pd.ID)
		v.Template = existing.Template // Template is immutable
		v.CreatedAt = existing.CreatedAt
		v.UpdatedAt = time.Now()

		existing.Description = v.Description
		existing.UpdatedAt = v.UpdatedAt
		existing.Tags = make(map[string]string, len(v.Tags))
		for _, t := range v.Tags {
			existing.Tags[t.Key] = t.Value
		}

		if err := tx.Set(vref, &existing); err != nil {
			return goerr.Wrap(err, "failed to write version document",
				goerr.TV(apperr.VersionKey, v.Version))
		}

		pd.UpdatedAt = v.UpdatedAt
		return tx.Set(ref, pd)
	})
	if err != nil {
		return wrapFirestoreErr(err, "failed to update version", v.PromptName)
	}

	return nil
}

// DeletePromptVersion deletes a version, removes any alias pointing at it,
// and recomputes the latest version marker
func (c *Client) DeletePromptVersion(ctx context.Context, name, version string) error {
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		pd, err := c.findByNameTx(tx, name)
		if err != nil {
			return err
		}

		ref := c.client.Collection(collectionPrompts).Doc(pd.ID)
		vref := ref.Collection(subCollectionVersions).Doc(version)

		if _, err := tx.Get(vref); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(prompt.ErrVersionNotFound, "no such version",
					goerr.TV(apperr.PromptNameKey, name),
					goerr.TV(apperr.VersionKey, version))
			}
			return goerr.Wrap(err, "failed to get version", goerr.TV(apperr.VersionKey, version))
		}

		// The remaining versions decide the new latest marker; read them
		// inside the transaction before any write.
		remaining := 0
		iter := tx.Documents(ref.Collection(subCollectionVersions))
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return goerr.Wrap(err, "failed to iterate versions")
			}
			if snap.Ref.ID == version {
				continue
			}
			if n, err := strconv.Atoi(snap.Ref.ID); err == nil && n > remaining {
				remaining = n
			}
		}

		if err := tx.Delete(vref); err != nil {
			return goerr.Wrap(err, "failed to delete version document",
				goerr.TV(apperr.VersionKey, version))
		}

		for alias, target := range pd.Aliases {
			if target == version {
				delete(pd.Aliases, alias)
			}
		}
		pd.Latest = ""
		if remaining > 0 {
			pd.Latest = strconv.Itoa(remaining)
		}
		pd.UpdatedAt = time.Now()

		return tx.Set(ref, pd)
	})
	if err != nil {
		return wrapFirestoreErr(err, "failed to delete version", name)
	}

	return nil
}

// ListPromptVersions returns versions ordered by numeric version ascending,
// strictly after afterVersion. limit 0 means no limit.
func (c *Client) ListPromptVersions(ctx context.Context, name string, afterVersion int, limit int) ([]*prompt.PromptVersion, error) {
	if limit < 0 {
		return nil, goerr.New("limit must be non-negative")
	}

	p, err := c.GetPromptByName(ctx, name)
	if err != nil {
		return nil, err
	}

	// Version document IDs are decimal strings, so lexicographic ordering is
	// wrong ("10" < "2"); collect and sort numerically instead.
	iter := c.client.Collection(collectionPrompts).Doc(p.ID.String()).
		Collection(subCollectionVersions).Documents(ctx)
	defer iter.Stop()

	var versions []*prompt.PromptVersion
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list versions",
				goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.PromptNameKey, name))
		}

		var doc versionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode version",
				goerr.T(apperr.ErrTagFirestore), goerr.TV(apperr.DocumentIDKey, snap.Ref.ID))
		}

		v := doc.toModel(p)
		if v.VersionNumber() > afterVersion {
			versions = append(versions, v)
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

// findByNameTx resolves a prompt document by name inside a transaction
func (c *Client) findByNameTx(tx *firestore.Transaction, name string) (*promptDoc, error) {
	query := c.client.Collection(collectionPrompts).Where("name", "==", name).Limit(1)
	docs, err := tx.Documents(query).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query prompt",
			goerr.TV(apperr.PromptNameKey, name))
	}
	if len(docs) == 0 {
		return nil, goerr.Wrap(prompt.ErrPromptNotFound, "no such prompt",
			goerr.TV(apperr.PromptNameKey, name))
	}

	var doc promptDoc
	if err := docs[0].DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode prompt",
			goerr.TV(apperr.DocumentIDKey, docs[0].Ref.ID))
	}
	return &doc, nil
}

// wrapFirestoreErr keeps domain sentinels intact while tagging raw transport
// failures as Firestore errors
func wrapFirestoreErr(err error, msg, name string) error {
	if goerr.HasTag(err, apperr.ErrTagNotFound) ||
		goerr.HasTag(err, apperr.ErrTagPromptNotFound) ||
		goerr.HasTag(err, apperr.ErrTagVersionNotFound) ||
		goerr.HasTag(err, apperr.ErrTagAlreadyExists) {
		return err
	}
	return goerr.Wrap(err, msg,
		goerr.T(apperr.ErrTagFirestore),
		goerr.TV(apperr.PromptNameKey, name))
}
