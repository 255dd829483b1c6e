package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-kurita/promptreg/pkg/utils/async"
)

// auditEvent records a successful registry mutation
type auditEvent struct {
	Operation string
	Name      string
	Version   string
	Alias     string
	TagKey    string
}

// emitAudit logs a mutation event off the request path. Tests can force
// synchronous delivery with async.WithSyncMode.
func emitAudit(ctx context.Context, ev auditEvent) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		attrs := []any{
			"operation", ev.Operation,
			"prompt", ev.Name,
		}
		if ev.Version != "" {
			attrs = append(attrs, "version", ev.Version)
		}
		if ev.Alias != "" {
			attrs = append(attrs, "alias", ev.Alias)
		}
		if ev.TagKey != "" {
			attrs = append(attrs, "tag_key", ev.TagKey)
		}
		ctxlog.From(ctx).Info("registry mutation", attrs...)
		return nil
	})
}
