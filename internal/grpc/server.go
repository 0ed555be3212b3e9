package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"foodDeliveryAdmin/internal/auth"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// ServiceName is the health service name the dashboard reports under, next to "".
const ServiceName = "food-delivery-admin"

// Server is the dashboard's gRPC listener. It serves the standard health service and the
// dispatch journal; journal methods require a session bearer token.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// NewServer creates a Server reporting SERVING. The journal service is registered when
// journal is non-nil.
func NewServer(resolver auth.PrincipalResolver, journal DispatchLog, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		logUnary(log),
		auth.NewUnaryAuthInterceptor(resolver, healthCheckMethod),
	))
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, h)
	if journal != nil {
		srv.RegisterService(&dispatchServiceDesc, &dispatchServer{journal: journal, log: log})
		h.SetServingStatus(DispatchServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	return &Server{srv: srv, health: h, log: log}
}

// Serve accepts connections on lis until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Drain reports NOT_SERVING so load balancers stop sending traffic.
func (s *Server) Drain() {
	s.health.Shutdown()
}

// Shutdown drains and stops gracefully, forcing a stop when ctx ends first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Drain()
	done := make(chan struct{})
	go func() { s.srv.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.srv.Stop()
		return ctx.Err()
	}
}

// StartGRPC listens on addr and serves in the background. It returns the server and the
// bound address.
func StartGRPC(addr string, resolver auth.PrincipalResolver, journal DispatchLog, log *slog.Logger) (*Server, net.Addr, error) {
	if addr == "" {
		addr = ":50051"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	s := NewServer(resolver, journal, log)
	go func() {
		if err := s.Serve(lis); err != nil {
			s.log.Error("grpc_serve_failed", slog.Any("err", err))
		}
	}()
	return s, lis.Addr(), nil
}

func logUnary(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc_request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
