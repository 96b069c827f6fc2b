package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	client, err := s.tokens.GetClientFromToken(accessToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		case errors.Is(err, common.ErrInvalidToken):
			return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
		default:
			s.logger.Error(ctx, "token check failed", "method", info.FullMethod, "error", err)
			return nil, status.Error(codes.Unavailable, "token check failed")
		}
	}

	ctx = logging.ContextWith(ctx, "client", client)
	return handler(ctx, req)
}
