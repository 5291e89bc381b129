// Package addressbook is the local mirror of synchronized address books,
// kept in Postgres with an optional raw-vCard archive in object storage.
package addressbook

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/graviox/roundcube-carddav/internal/dbx"
	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/server/directory"
	"github.com/graviox/roundcube-carddav/internal/server/models"
	"github.com/graviox/roundcube-carddav/internal/server/repositories/repomanager"
)

// Archive stores raw vCards next to the database rows.
type Archive interface {
	Put(ctx context.Context, key string, body []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Store implements directory.Store. archive may be nil.
type Store struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archive     Archive
	logger      logging.Logger
}

func NewStore(db *sql.DB, m repomanager.RepositoryManager, archive Archive, logger logging.Logger) *Store {
	return &Store{db: db, repomanager: m, archive: archive, logger: logger.With("module", "addressbook")}
}

// Capabilities is the same for every source: the mirror is read-only and
// has no contact groups.
func (s *Store) Capabilities(string) directory.Capabilities {
	return directory.Capabilities{ReadOnly: true, Groups: false}
}

func (s *Store) Sink(ownerID, sourceID string) directory.Sink {
	return &sink{store: s, ownerID: ownerID, sourceID: sourceID}
}

// DropSource deletes every row of a source and its archived vCards in one
// transaction. If the archive cleanup fails the rows are kept.
func (s *Store) DropSource(ctx context.Context, ownerID, sourceID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Contacts(tx).DeleteSource(ctx, ownerID, sourceID)
		if err != nil {
			return err
		}
		if s.archive != nil {
			if err := s.archive.DeletePrefix(ctx, archivePrefix(sourceID)); err != nil {
				return err
			}
		}
		s.logger.Info(ctx, "source dropped", "owner_id", ownerID, "source_id", sourceID, "contacts", n)
		return nil
	})
}

func archivePrefix(sourceID string) string {
	return "sources/" + sourceID + "/"
}

// ArchiveKey is where the raw vCard of a contact is archived.
func ArchiveKey(sourceID string, vcard []byte) string {
	sum := sha256.Sum256(vcard)
	return archivePrefix(sourceID) + hex.EncodeToString(sum[:]) + ".vcf"
}

type sink struct {
	store    *Store
	ownerID  string
	sourceID string
}

func (k *sink) Known(ctx context.Context) (map[string]string, error) {
	return k.store.repomanager.Contacts(k.store.db).Known(ctx, k.ownerID, k.sourceID)
}

func (k *sink) Put(ctx context.Context, obj directory.Object) error {
	if k.store.archive != nil {
		if err := k.store.archive.Put(ctx, ArchiveKey(k.sourceID, obj.VCard), obj.VCard); err != nil {
			return fmt.Errorf("archiving %s: %w", obj.Href, err)
		}
	}

	return k.store.repomanager.Contacts(k.store.db).Upsert(ctx, &models.Contact{
		OwnerID:     k.ownerID,
		SourceID:    k.sourceID,
		Href:        obj.Href,
		ETag:        obj.ETag,
		UID:         obj.UID,
		DisplayName: obj.DisplayName,
		Email:       obj.Email,
		VCard:       obj.VCard,
	})
}

func (k *sink) Remove(ctx context.Context, href string) error {
	return k.store.repomanager.Contacts(k.store.db).Remove(ctx, k.ownerID, k.sourceID, href)
}
