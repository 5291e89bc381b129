package grpc

import (
	"context"

	"github.com/graviox/roundcube-carddav/internal/server/models"
	"github.com/graviox/roundcube-carddav/internal/server/services"
)

type fakeRegistry struct {
	servers   []models.ServerConfig
	available bool
	err       error
	owners    []string
}

func (f *fakeRegistry) List(_ context.Context, ownerID string) ([]models.ServerConfig, error) {
	f.owners = append(f.owners, ownerID)
	return f.servers, f.err
}

func (f *fakeRegistry) Available(_ context.Context, ownerID string) (bool, error) {
	f.owners = append(f.owners, ownerID)
	return f.available, f.err
}

type fakeSettings struct {
	registerRes *services.RegisterResult
	registerErr error
	registerIn  services.ServerInput

	deleteRes []models.ServerConfig
	deleteErr error

	syncRes  *services.SyncReport
	syncErr  error
	syncedID string
}

func (f *fakeSettings) RegisterServer(_ context.Context, _ string, in services.ServerInput) (*services.RegisterResult, error) {
	f.registerIn = in
	return f.registerRes, f.registerErr
}

func (f *fakeSettings) DeleteServer(context.Context, string, string) ([]models.ServerConfig, error) {
	return f.deleteRes, f.deleteErr
}

func (f *fakeSettings) Sync(_ context.Context, _ string, serverID string) (*services.SyncReport, error) {
	f.syncedID = serverID
	return f.syncRes, f.syncErr
}

type fakeSources struct {
	sources  []models.DirectorySource
	resolved *models.ServerConfig
	ensured  []string
	err      error
}

func (f *fakeSources) ListSources(context.Context, string) ([]models.DirectorySource, error) {
	return f.sources, f.err
}

func (f *fakeSources) ResolveSource(context.Context, string, string) (*models.ServerConfig, error) {
	return f.resolved, f.err
}

func (f *fakeSources) EnsureRegistered(_ context.Context, _ string, current []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append(current, f.ensured...), nil
}
