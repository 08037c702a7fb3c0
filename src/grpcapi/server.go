package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"finnie/src/logger"
	"finnie/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// DefaultPort is used when grpc_port is not configured.
const DefaultPort = 50051

// -----------------------------------------------------------------------------
// GRPCServer
// -----------------------------------------------------------------------------

type GRPCServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Service *AssistantService

	server *grpc.Server
}

func NewGRPCServer(cfg *models.MConfig, log *logger.Logger, svc *AssistantService) *GRPCServer {
	s := &GRPCServer{
		Config:  cfg,
		Logger:  log,
		Service: svc,
	}
	s.server = grpc.NewServer(grpc.ChainUnaryInterceptor(s.logCalls))
	RegisterAssistantServer(s.server, svc)
	return s
}

// Addr is the configured listen address.
func (s *GRPCServer) Addr() string {
	port := s.Config.GrpcPort
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", s.Config.GrpcHost, port)
}

// -----------------------------------------------------------------------------

// Start listens on the configured address and blocks serving.
func (s *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(lis)
}

// Serve blocks serving on an existing listener.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.Logger.Info("gRPC %s listening on %s", ServiceName, lis.Addr())
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop drains in-flight calls, falling back to a hard stop when ctx ends.
func (s *GRPCServer) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		<-done
		return ctx.Err()
	}
}

// -----------------------------------------------------------------------------

func (s *GRPCServer) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		s.Logger.Info("%s %s (%v)", info.FullMethod, status.Code(err), time.Since(start))
	} else {
		s.Logger.Debug("%s OK (%v)", info.FullMethod, time.Since(start))
	}
	return resp, err
}
