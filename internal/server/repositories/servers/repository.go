// Package servers stores the registered remote directory servers of each
// owner. Every query is scoped by owner_id.
package servers

import (
	"context"

	"github.com/graviox/roundcube-carddav/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, ownerID string) ([]models.ServerConfig, error)
	Get(ctx context.Context, ownerID, id string) (*models.ServerConfig, error)
	Create(ctx context.Context, server *models.ServerConfig) (*models.ServerConfig, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
	Exists(ctx context.Context, ownerID string) (bool, error)
}
