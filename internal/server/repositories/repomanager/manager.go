package repomanager

import (
	"context"
	"database/sql"

	"github.com/graviox/roundcube-carddav/internal/dbx"
	"github.com/graviox/roundcube-carddav/internal/server/repositories/contacts"
	"github.com/graviox/roundcube-carddav/internal/server/repositories/servers"
)

// RepositoryManager vends repositories bound to either a *sql.DB or a
// *sql.Tx, so services can decide per call whether work is transactional.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Servers(db dbx.DBTX) servers.Repository
	Contacts(db dbx.DBTX) contacts.Repository
}
