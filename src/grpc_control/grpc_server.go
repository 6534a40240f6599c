package grpc_control

import (
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"

	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// GRPCServer serves the query service on a TCP address.
type GRPCServer struct {
	Addr    string
	Service *QueryService
	Logger  *logger.Logger

	mu       sync.Mutex
	server   *grpc.Server
	listener net.Listener
}

// -----------------------------------------------------------------------------

func NewGRPCServer(cfg *models.MConfig, store interfaces.ISeriesStore, log *logger.Logger) *GRPCServer {
	if log == nil {
		log = logger.Discard("GRPCServer")
	}
	server := grpc.NewServer()
	service := NewQueryService(cfg, store, log.Named("QueryService"))
	RegisterTrackerQueryServer(server, service)

	return &GRPCServer{
		Addr:    fmt.Sprintf("%s:%d", cfg.GrpcHost, cfg.GrpcPort),
		Service: service,
		Logger:  log,
		server:  server,
	}
}

// -----------------------------------------------------------------------------

// Start listens and serves until Stop is called.
func (s *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", s.Addr, err)
	}
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	s.Logger.Info("Starting gRPC Query Server on %s", lis.Addr())
	return s.server.Serve(lis)
}

// ListenAddr is the bound address, nil before Start.
func (s *GRPCServer) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *GRPCServer) Stop() error {
	s.server.GracefulStop()
	return nil
}
