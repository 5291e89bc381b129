package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/server/directory"
	"github.com/graviox/roundcube-carddav/internal/server/models"
	"golang.org/x/sync/errgroup"
)

// SyncService drives synchronization passes between registered servers and
// the local store. Every server is synchronized independently.
type SyncService struct {
	registry *RegistryService
	factory  directory.Factory
	store    directory.Store
	workers  int
	timeout  time.Duration
	logger   logging.Logger
}

func NewSyncService(registry *RegistryService, factory directory.Factory, store directory.Store,
	workers int, timeout time.Duration, logger logging.Logger) *SyncService {
	if workers < 1 {
		workers = 1
	}
	return &SyncService{
		registry: registry,
		factory:  factory,
		store:    store,
		workers:  workers,
		timeout:  timeout,
		logger:   logger.With("module", "sync"),
	}
}

// SyncOne runs one pass for one server. An unknown server is an error; any
// failure of the pass itself is reported in the outcome.
func (s *SyncService) SyncOne(ctx context.Context, ownerID, serverID string) (models.SyncOutcome, error) {
	server, err := s.registry.Get(ctx, ownerID, serverID)
	if err != nil {
		return models.SyncOutcome{}, err
	}
	return s.syncServer(ctx, server), nil
}

// SyncAll runs one pass for every server of the owner on a bounded pool and
// returns the outcomes in listing order. Only a failure to list the servers
// is returned as an error.
func (s *SyncService) SyncAll(ctx context.Context, ownerID string) ([]models.SyncOutcome, error) {
	servers, err := s.registry.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]models.SyncOutcome, len(servers))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range servers {
		g.Go(func() error {
			outcomes[i] = s.syncServer(ctx, &servers[i])
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, nil
}

// AllSucceeded reports whether every pass in the batch succeeded.
func AllSucceeded(outcomes []models.SyncOutcome) bool {
	for _, o := range outcomes {
		if !o.Succeeded {
			return false
		}
	}
	return true
}

// Failed returns the failed subset of outcomes, preserving order.
func Failed(outcomes []models.SyncOutcome) []models.SyncOutcome {
	var failed []models.SyncOutcome
	for _, o := range outcomes {
		if !o.Succeeded {
			failed = append(failed, o)
		}
	}
	return failed
}

func (s *SyncService) syncServer(ctx context.Context, server *models.ServerConfig) models.SyncOutcome {
	sourceID := directory.SourceID(server.ID)
	outcome := models.SyncOutcome{ServerID: server.ID, SourceID: sourceID}

	err := s.runPass(ctx, server, sourceID)

	// The server may have been deleted while the pass was running.
	if _, gerr := s.registry.Get(ctx, server.OwnerID, server.ID); errors.Is(gerr, common.ErrorNotFound) {
		if derr := s.store.DropSource(ctx, server.OwnerID, sourceID); derr != nil {
			s.logger.Error(ctx, "dropping orphaned source failed", "server_id", server.ID, "error", derr)
		}
		err = fmt.Errorf("%w: server deleted during sync", common.ErrorNotFound)
	}

	if err != nil {
		outcome.Err = err
		s.logger.Warn(ctx, "sync failed", "owner_id", server.OwnerID, "server_id", server.ID, "error", err)
		return outcome
	}

	outcome.Succeeded = true
	s.logger.Info(ctx, "sync finished", "owner_id", server.OwnerID, "server_id", server.ID)
	return outcome
}

func (s *SyncService) runPass(ctx context.Context, server *models.ServerConfig, sourceID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	creds, err := s.registry.Credentials(server)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorSyncFailed, err)
	}
	defer creds.Wipe()

	client, err := s.factory.NewClient(creds)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorSyncFailed, err)
	}

	sink := &passSink{Sink: s.store.Sink(server.OwnerID, sourceID)}
	defer sink.close()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("panic: %v", p)
			}
		}()
		done <- client.Synchronize(ctx, sink)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", common.ErrorSyncTimeout, err)
	default:
		return fmt.Errorf("%w: %w", common.ErrorSyncFailed, err)
	}
}

var errPassClosed = errors.New("sync pass already finished")

// passSink rejects writes once its pass has returned, so a client that
// outlives its deadline cannot touch the mirror after the outcome is known.
type passSink struct {
	directory.Sink

	mu     sync.Mutex
	closed bool
}

func (p *passSink) Put(ctx context.Context, obj directory.Object) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errPassClosed
	}
	return p.Sink.Put(ctx, obj)
}

func (p *passSink) Remove(ctx context.Context, href string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errPassClosed
	}
	return p.Sink.Remove(ctx, href)
}

// close waits for an in-flight write to finish.
func (p *passSink) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
