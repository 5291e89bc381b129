package contacts

import (
	"context"
	"fmt"

	"github.com/graviox/roundcube-carddav/internal/dbx"
	"github.com/graviox/roundcube-carddav/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Known(ctx context.Context, ownerID, sourceID string) (map[string]string, error) {
	query :=
		`SELECT href, etag FROM carddav_contacts
		 WHERE owner_id = $1 AND source_id = $2
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	known := make(map[string]string)
	for rows.Next() {
		var href, etag string
		if err := rows.Scan(&href, &etag); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		known[href] = etag
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return known, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Contact) error {
	query :=
		`INSERT INTO carddav_contacts (owner_id, source_id, href, etag, uid, display_name, email, vcard, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (owner_id, source_id, href) DO UPDATE
		 SET etag = EXCLUDED.etag, uid = EXCLUDED.uid, display_name = EXCLUDED.display_name,
		     email = EXCLUDED.email, vcard = EXCLUDED.vcard, updated_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query,
		c.OwnerID, c.SourceID, c.Href, c.ETag, c.UID, c.DisplayName, c.Email, c.VCard)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, ownerID, sourceID, href string) error {
	query :=
		`DELETE FROM carddav_contacts
		 WHERE owner_id = $1 AND source_id = $2 AND href = $3
		 `

	if _, err := r.db.ExecContext(ctx, query, ownerID, sourceID, href); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteSource(ctx context.Context, ownerID, sourceID string) (int64, error) {
	query :=
		`DELETE FROM carddav_contacts
		 WHERE owner_id = $1 AND source_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, ownerID, sourceID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
