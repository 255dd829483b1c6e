package types

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/utils/errors"
)

// UUID is the internal identifier of a prompt record
type UUID string

// NewUUID generates a new UUID (v7 preferred for time-ordered keys)
func NewUUID(ctx context.Context) UUID {
	id, err := uuid.NewV7()
	if err != nil {
		errors.Handle(ctx, goerr.Wrap(err, "failed to generate uuid V7, fallback to V4"))
		return UUID(uuid.New().String())
	}

	return UUID(id.String())
}

// String returns the string representation of UUID
func (id UUID) String() string {
	return string(id)
}

// IsValid checks if the UUID is valid
func (id UUID) IsValid() bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(string(id))
	return err == nil
}
