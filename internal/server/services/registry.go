// Package services contains server-side business logic: the server
// registry, the sync orchestrator, the source aggregator and the settings
// operations that the gRPC layer exposes.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/server/directory"
	"github.com/graviox/roundcube-carddav/internal/server/models"
	"github.com/graviox/roundcube-carddav/internal/server/repositories/repomanager"
)

// Cipher seals server passwords at rest.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(sealed []byte) ([]byte, error)
}

// RegistryService owns the per-owner list of remote directory servers.
// All lookups are scoped by owner; a foreign id behaves like a missing one.
type RegistryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      Cipher
	logger      logging.Logger
}

func NewRegistryService(db *sql.DB, m repomanager.RepositoryManager, cipher Cipher, logger logging.Logger) *RegistryService {
	return &RegistryService{
		db:          db,
		repomanager: m,
		cipher:      cipher,
		logger:      logger.With("module", "registry"),
	}
}

// List returns the owner's servers ordered by creation time.
func (s *RegistryService) List(ctx context.Context, ownerID string) ([]models.ServerConfig, error) {
	return s.repomanager.Servers(s.db).List(ctx, ownerID)
}

// Get returns one server of the owner. Malformed ids are reported as
// common.ErrorNotFound without touching the database.
func (s *RegistryService) Get(ctx context.Context, ownerID, id string) (*models.ServerConfig, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Servers(s.db).Get(ctx, ownerID, id)
}

// Available reports whether the owner has at least one server.
func (s *RegistryService) Available(ctx context.Context, ownerID string) (bool, error) {
	return s.repomanager.Servers(s.db).Exists(ctx, ownerID)
}

// Validate checks registration input without persisting anything.
func (s *RegistryService) Validate(ownerID, label, rawURL, username string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: empty owner", common.ErrorValidation)
	}
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: empty label", common.ErrorValidation)
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: empty username", common.ErrorValidation)
	}
	return ValidateURL(rawURL)
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url must use http or https", common.ErrorValidation)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", common.ErrorValidation)
	}
	return nil
}

// Create validates the input, seals the secret and persists a new server.
// It does not contact the remote endpoint.
func (s *RegistryService) Create(ctx context.Context, ownerID, label, rawURL, username, secret string) (*models.ServerConfig, error) {
	if err := s.Validate(ownerID, label, rawURL, username); err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Encrypt([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("%w: encrypting secret: %w", common.ErrorInternal, err)
	}

	server := &models.ServerConfig{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Label:    strings.TrimSpace(label),
		URL:      strings.TrimSpace(rawURL),
		Username: strings.TrimSpace(username),
		Secret:   sealed,
	}

	created, err := s.repomanager.Servers(s.db).Create(ctx, server)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "server registered", "owner_id", ownerID, "server_id", created.ID, "url", created.URL)
	return created, nil
}

// Delete removes one server of the owner and reports whether a row was
// removed. The local mirror is left alone.
func (s *RegistryService) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	removed, err := s.repomanager.Servers(s.db).Delete(ctx, ownerID, id)
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info(ctx, "server deleted", "owner_id", ownerID, "server_id", id)
	}
	return removed, nil
}

// Credentials decrypts the stored secret of server. The caller owns the
// result and must Wipe it.
func (s *RegistryService) Credentials(server *models.ServerConfig) (directory.Credentials, error) {
	plain, err := s.cipher.Decrypt(server.Secret)
	if err != nil {
		return directory.Credentials{}, fmt.Errorf("%w: decrypting secret: %w", common.ErrorInternal, err)
	}
	return directory.Credentials{URL: server.URL, Username: server.Username, Password: plain}, nil
}
