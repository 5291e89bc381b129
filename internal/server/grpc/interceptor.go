package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const ownerIDKey ctxKey = "ownerID"

const healthServicePrefix = "/grpc.health.v1.Health/"

// accessTokenInterceptor resolves the owner from the access token on every
// call except health checks.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
		return handler(ctx, req)
	}

	accessToken := firstMetadata(ctx, common.AccessTokenHeaderName)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	ownerID, err := auth.GetOwnerIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, ownerIDKey, ownerID)
	return handler(ctx, req)
}

func ownerFromContext(ctx context.Context) (string, error) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	if !ok || ownerID == "" {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return ownerID, nil
}

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
