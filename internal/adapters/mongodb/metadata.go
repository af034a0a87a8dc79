// Package mongodb persists the free-form redemption-attempt metadata
// documents decoupled from the relational schema (see SPEC_FULL.md §3).
package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/mmongo"
)

const collectionName = "attempt_metadata"

// document is the shape persisted per attempt.
type document struct {
	EntityType string         `bson:"entityType"`
	EntityID   string         `bson:"entityId"`
	Metadata   map[string]any `bson:"metadata"`
	CreatedAt  time.Time      `bson:"createdAt"`
}

// Repository is the Mongo-backed implementation of ports.MetadataRepository.
type Repository struct {
	conn *mmongo.Connection
}

// NewRepository returns a Repository bound to conn.
func NewRepository(conn *mmongo.Connection) *Repository {
	return &Repository{conn: conn}
}

var _ ports.MetadataRepository = (*Repository)(nil)

// SaveAttemptMetadata is a best-effort side write: it never blocks or fails
// the attempt record it accompanies (see SPEC_FULL.md §3). Callers log but
// do not propagate its error.
func (r *Repository) SaveAttemptMetadata(ctx context.Context, attemptID uuid.UUID, metadata map[string]any) error {
	if len(metadata) == 0 {
		return nil
	}

	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}

	doc := document{
		EntityType: "redemption_attempt",
		EntityID:   attemptID.String(),
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	_, err = db.Collection(collectionName).InsertOne(ctx, doc)

	return err
}
