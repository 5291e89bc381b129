package services

import (
	"context"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/server/directory"
	"github.com/graviox/roundcube-carddav/internal/server/models"
)

// SourceService exposes registered servers as directory sources. It only
// reads the registry; it never talks to a remote server.
type SourceService struct {
	registry *RegistryService
	store    directory.Store
}

func NewSourceService(registry *RegistryService, store directory.Store) *SourceService {
	return &SourceService{registry: registry, store: store}
}

// ListSources returns one source per registered server, in registry order.
func (s *SourceService) ListSources(ctx context.Context, ownerID string) ([]models.DirectorySource, error) {
	servers, err := s.registry.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sources := make([]models.DirectorySource, 0, len(servers))
	for _, server := range servers {
		id := directory.SourceID(server.ID)
		caps := s.store.Capabilities(id)
		sources = append(sources, models.DirectorySource{
			SourceID:    id,
			DisplayName: server.Label,
			ReadOnly:    caps.ReadOnly,
			Groups:      caps.Groups,
		})
	}
	return sources, nil
}

// ResolveSource maps a source id back to the owner's server.
func (s *SourceService) ResolveSource(ctx context.Context, ownerID, sourceID string) (*models.ServerConfig, error) {
	serverID, ok := directory.ServerID(sourceID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.registry.Get(ctx, ownerID, serverID)
}

// EnsureRegistered appends every source of the owner that is missing from
// current, keeping the existing entries and their order.
func (s *SourceService) EnsureRegistered(ctx context.Context, ownerID string, current []string) ([]string, error) {
	sources, err := s.ListSources(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(current))
	result := make([]string, 0, len(current)+len(sources))
	for _, id := range current {
		seen[id] = struct{}{}
		result = append(result, id)
	}
	for _, src := range sources {
		if _, ok := seen[src.SourceID]; ok {
			continue
		}
		seen[src.SourceID] = struct{}{}
		result = append(result, src.SourceID)
	}
	return result, nil
}
