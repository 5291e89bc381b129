package servers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/dbx"
	"github.com/graviox/roundcube-carddav/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string) ([]models.ServerConfig, error) {
	query :=
		`SELECT id, owner_id, label, url, username, secret, created_at FROM carddav_servers
		 WHERE owner_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ServerConfig{}
	for rows.Next() {
		var s models.ServerConfig
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Label, &s.URL, &s.Username, &s.Secret, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.ServerConfig, error) {
	query :=
		`SELECT id, owner_id, label, url, username, secret, created_at FROM carddav_servers
		 WHERE owner_id = $1 AND id = $2
		 `

	s := &models.ServerConfig{}
	err := r.db.QueryRowContext(ctx, query, ownerID, id).
		Scan(&s.ID, &s.OwnerID, &s.Label, &s.URL, &s.Username, &s.Secret, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, server *models.ServerConfig) (*models.ServerConfig, error) {
	query :=
		`INSERT INTO carddav_servers (id, owner_id, label, url, username, secret)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		server.ID, server.OwnerID, server.Label, server.URL, server.Username, server.Secret).Scan(&server.CreatedAt)

	if err != nil {
		if dbx.IsConstraintViolation(err) {
			return nil, fmt.Errorf("%w: %w", common.ErrorPersistence, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return server, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	query :=
		`DELETE FROM carddav_servers
		 WHERE owner_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, ownerID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM carddav_servers WHERE owner_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}
