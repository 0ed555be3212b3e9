package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PrincipalResolver turns a session bearer token into a Principal.
// It returns (nil, nil) when the session does not exist or has expired.
type PrincipalResolver interface {
	Resolve(ctx context.Context, sessionID string) (*Principal, error)
}

// NewUnaryAuthInterceptor returns a gRPC unary interceptor that extracts the session
// bearer token from incoming metadata, resolves it, and injects the Principal into the context.
// Methods listed in allowUnauthenticated bypass authentication (e.g., health checks).
func NewUnaryAuthInterceptor(resolver PrincipalResolver, allowUnauthenticated ...string) grpc.UnaryServerInterceptor {
	allow := make(map[string]struct{}, len(allowUnauthenticated))
	for _, m := range allowUnauthenticated {
		allow[strings.TrimSpace(m)] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := allow[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		tok, err := BearerFromMD(ctx)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		p, err := resolver.Resolve(ctx, tok)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "resolve session: %v", err)
		}
		if p == nil {
			return nil, status.Error(codes.Unauthenticated, "session not found or expired")
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}
	return p, nil
}
