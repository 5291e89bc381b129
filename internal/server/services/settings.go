package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/server/directory"
	"github.com/graviox/roundcube-carddav/internal/server/models"
)

// ServerInput is what a user submits to register a server.
type ServerInput struct {
	Label    string
	URL      string
	Username string
	Password string
}

// trimmed drops surrounding whitespace from everything but the password.
func (in ServerInput) trimmed() ServerInput {
	in.Label = strings.TrimSpace(in.Label)
	in.URL = strings.TrimSpace(in.URL)
	in.Username = strings.TrimSpace(in.Username)
	return in
}

// RegisterResult is returned by RegisterServer.
type RegisterResult struct {
	Server  *models.ServerConfig
	Initial models.SyncOutcome
	Servers []models.ServerConfig
}

// SyncReport is returned by Sync.
type SyncReport struct {
	Outcomes     []models.SyncOutcome
	AllSucceeded bool
}

// SettingsService implements the user-triggered operations: register,
// delete and sync.
type SettingsService struct {
	registry     *RegistryService
	sync         *SyncService
	factory      directory.Factory
	store        directory.Store
	checkTimeout time.Duration
	logger       logging.Logger
}

func NewSettingsService(registry *RegistryService, sync *SyncService, factory directory.Factory,
	store directory.Store, checkTimeout time.Duration, logger logging.Logger) *SettingsService {
	return &SettingsService{
		registry:     registry,
		sync:         sync,
		factory:      factory,
		store:        store,
		checkTimeout: checkTimeout,
		logger:       logger.With("module", "settings"),
	}
}

// RegisterServer checks that the server is reachable with the given
// credentials, persists exactly the checked values and runs the initial sync. A failed initial sync
// does not undo the registration.
func (s *SettingsService) RegisterServer(ctx context.Context, ownerID string, in ServerInput) (*RegisterResult, error) {
	in = in.trimmed()
	if err := s.registry.Validate(ownerID, in.Label, in.URL, in.Username); err != nil {
		return nil, err
	}

	if err := s.checkConnection(ctx, in); err != nil {
		s.logger.Warn(ctx, "connectivity check failed", "owner_id", ownerID, "url", in.URL, "error", err)
		return nil, err
	}

	server, err := s.registry.Create(ctx, ownerID, in.Label, in.URL, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	initial, err := s.sync.SyncOne(ctx, ownerID, server.ID)
	if err != nil {
		initial = models.SyncOutcome{
			ServerID: server.ID,
			SourceID: directory.SourceID(server.ID),
			Err:      err,
		}
	}

	servers, err := s.registry.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{Server: server, Initial: initial, Servers: servers}, nil
}

func (s *SettingsService) checkConnection(ctx context.Context, in ServerInput) error {
	creds := directory.Credentials{URL: in.URL, Username: in.Username, Password: []byte(in.Password)}
	defer creds.Wipe()

	client, err := s.factory.NewClient(creds)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorConnectivity, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	if err := client.CheckConnection(ctx); err != nil {
		if errors.Is(err, common.ErrorConnectivity) {
			return err
		}
		return fmt.Errorf("%w: %w", common.ErrorConnectivity, err)
	}
	return nil
}

// DeleteServer removes a server and then drops its mirrored data. When the
// cleanup fails the deletion stands and common.ErrorCleanupFailed is
// returned together with the updated listing. A listing failure is returned
// on its own.
func (s *SettingsService) DeleteServer(ctx context.Context, ownerID, serverID string) ([]models.ServerConfig, error) {
	removed, err := s.registry.Delete(ctx, ownerID, serverID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, common.ErrorNotFound
	}

	var cleanupErr error
	if err := s.store.DropSource(ctx, ownerID, directory.SourceID(serverID)); err != nil {
		s.logger.Error(ctx, "dropping source failed", "owner_id", ownerID, "server_id", serverID, "error", err)
		cleanupErr = fmt.Errorf("%w: %w", common.ErrorCleanupFailed, err)
	}

	servers, err := s.registry.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return servers, cleanupErr
}

// Sync synchronizes one server, or every server of the owner when serverID
// is empty.
func (s *SettingsService) Sync(ctx context.Context, ownerID, serverID string) (*SyncReport, error) {
	var outcomes []models.SyncOutcome

	if serverID == "" {
		all, err := s.sync.SyncAll(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		outcomes = all
	} else {
		one, err := s.sync.SyncOne(ctx, ownerID, serverID)
		if err != nil {
			return nil, err
		}
		outcomes = []models.SyncOutcome{one}
	}

	return &SyncReport{Outcomes: outcomes, AllSucceeded: AllSucceeded(outcomes)}, nil
}
