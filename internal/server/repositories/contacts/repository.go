// Package contacts stores the local mirror of every synchronized address
// book, keyed by (owner_id, source_id, href).
package contacts

import (
	"context"

	"github.com/graviox/roundcube-carddav/internal/server/models"
)

type Repository interface {
	// Known returns href → etag for every mirrored object of a source.
	Known(ctx context.Context, ownerID, sourceID string) (map[string]string, error)
	Upsert(ctx context.Context, contact *models.Contact) error
	Remove(ctx context.Context, ownerID, sourceID, href string) error
	DeleteSource(ctx context.Context, ownerID, sourceID string) (int64, error)
}
