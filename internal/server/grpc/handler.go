package grpc

import (
	"context"
	"errors"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/rpc"
	"github.com/graviox/roundcube-carddav/internal/server/i18n"
	"github.com/graviox/roundcube-carddav/internal/server/models"
	"github.com/graviox/roundcube-carddav/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) RegisterServer(ctx context.Context, req *rpc.RegisterServerRequest) (*rpc.RegisterServerResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.settings.RegisterServer(ctx, ownerID, services.ServerInput{
		Label:    req.Label,
		URL:      req.URL,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.logger.Warn(ctx, "register server failed", "owner_id", ownerID, "url", req.URL, "error", err)
		key := i18n.SettingsSaveFailed
		if errors.Is(err, common.ErrorConnectivity) {
			key = i18n.SettingsNoConnection
		}
		return nil, s.statusError(ctx, err, key)
	}

	return &rpc.RegisterServerResponse{
		Server:  toServerInfo(res.Server.View()),
		Initial: toSyncResult(res.Initial),
		Servers: toServerInfos(res.Servers),
		Message: s.text(ctx, i18n.SettingsSaved),
	}, nil
}

func (s *GRPCServer) DeleteServer(ctx context.Context, req *rpc.DeleteServerRequest) (*rpc.DeleteServerResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	servers, err := s.settings.DeleteServer(ctx, ownerID, req.ServerID)
	if err != nil {
		if errors.Is(err, common.ErrorCleanupFailed) {
			s.logger.Error(ctx, "server deleted but local cleanup failed", "owner_id", ownerID, "server_id", req.ServerID, "error", err)
			return &rpc.DeleteServerResponse{
				Servers:       toServerInfos(servers),
				CleanupFailed: true,
				Message:       s.text(ctx, i18n.SettingsDeleted),
			}, nil
		}
		s.logger.Warn(ctx, "delete server failed", "owner_id", ownerID, "server_id", req.ServerID, "error", err)
		return nil, s.statusError(ctx, err, i18n.SettingsDeleteFailed)
	}

	return &rpc.DeleteServerResponse{
		Servers: toServerInfos(servers),
		Message: s.text(ctx, i18n.SettingsDeleted),
	}, nil
}

func (s *GRPCServer) ListServers(ctx context.Context, req *rpc.ListServersRequest) (*rpc.ListServersResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	servers, err := s.registry.List(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "list servers failed", "owner_id", ownerID, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &rpc.ListServersResponse{Servers: toServerInfos(servers)}, nil
}

func (s *GRPCServer) Sync(ctx context.Context, req *rpc.SyncRequest) (*rpc.SyncResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.settings.Sync(ctx, ownerID, req.ServerID)
	if err != nil {
		s.logger.Warn(ctx, "sync failed", "owner_id", ownerID, "server_id", req.ServerID, "error", err)
		return nil, s.statusError(ctx, err, i18n.AddressbookSyncFailed)
	}

	results := make([]rpc.SyncResult, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		results = append(results, toSyncResult(o))
	}

	key := i18n.AddressbookSynced
	if !report.AllSucceeded {
		key = i18n.AddressbookSyncFailed
	}

	return &rpc.SyncResponse{
		Results:      results,
		AllSucceeded: report.AllSucceeded,
		Message:      s.text(ctx, key),
	}, nil
}

func (s *GRPCServer) ListSources(ctx context.Context, req *rpc.ListSourcesRequest) (*rpc.ListSourcesResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sources, err := s.sources.ListSources(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "list sources failed", "owner_id", ownerID, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	out := make([]rpc.Source, 0, len(sources))
	for _, src := range sources {
		out = append(out, rpc.Source{
			SourceID:       src.SourceID,
			DisplayName:    src.DisplayName,
			ReadOnly:       src.ReadOnly,
			SupportsGroups: src.Groups,
		})
	}
	return &rpc.ListSourcesResponse{Sources: out}, nil
}

func (s *GRPCServer) ResolveSource(ctx context.Context, req *rpc.ResolveSourceRequest) (*rpc.ResolveSourceResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	server, err := s.sources.ResolveSource(ctx, ownerID, req.SourceID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.NotFound, "source not found")
		}
		s.logger.Error(ctx, "resolve source failed", "owner_id", ownerID, "source_id", req.SourceID, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &rpc.ResolveSourceResponse{Server: toServerInfo(server.View())}, nil
}

func (s *GRPCServer) Available(ctx context.Context, req *rpc.AvailableRequest) (*rpc.AvailableResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.registry.Available(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "availability check failed", "owner_id", ownerID, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &rpc.AvailableResponse{Available: ok}, nil
}

func (s *GRPCServer) EnsureRegistered(ctx context.Context, req *rpc.EnsureRegisteredRequest) (*rpc.EnsureRegisteredResponse, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := s.sources.EnsureRegistered(ctx, ownerID, req.Current)
	if err != nil {
		s.logger.Error(ctx, "ensure registered failed", "owner_id", ownerID, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &rpc.EnsureRegisteredResponse{Sources: ids}, nil
}

func (s *GRPCServer) text(ctx context.Context, key i18n.Key) string {
	return i18n.Localize(firstMetadata(ctx, common.AcceptLanguageHeaderName), key)
}

// statusError maps a service error to a gRPC status carrying the localized
// message for key. The raw error is never sent to the caller.
func (s *GRPCServer) statusError(ctx context.Context, err error, key i18n.Key) error {
	return status.Error(codeFor(err), s.text(ctx, key))
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrorValidation):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrorConnectivity):
		return codes.Unavailable
	case errors.Is(err, common.ErrorUnauthorized):
		return codes.Unauthenticated
	case errors.Is(err, common.ErrorInternal):
		return codes.Internal
	default:
		return codes.Internal
	}
}

func toServerInfo(v models.ServerView) rpc.ServerInfo {
	return rpc.ServerInfo{ID: v.ID, Label: v.Label, URL: v.URL, Username: v.Username, Password: v.Password}
}

func toServerInfos(servers []models.ServerConfig) []rpc.ServerInfo {
	views := models.Views(servers)
	out := make([]rpc.ServerInfo, 0, len(views))
	for _, v := range views {
		out = append(out, toServerInfo(v))
	}
	return out
}

// toSyncResult reduces an outcome error to its category.
func toSyncResult(o models.SyncOutcome) rpc.SyncResult {
	r := rpc.SyncResult{ServerID: o.ServerID, SourceID: o.SourceID, Succeeded: o.Succeeded}
	if o.Err != nil {
		switch {
		case errors.Is(o.Err, common.ErrorSyncTimeout):
			r.Error = common.ErrorSyncTimeout.Error()
		case errors.Is(o.Err, common.ErrorNotFound):
			r.Error = common.ErrorNotFound.Error()
		default:
			r.Error = common.ErrorSyncFailed.Error()
		}
	}
	return r
}
