package main

import (
	"gpu-price-tracker/src/config"
	pb "gpu-price-tracker/src/grpc_control"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/server"
)

// -----------------------------------------------------------------------------

// setupServers builds the read surfaces over the store: the HTTP API and,
// when a port is configured, the gRPC query service.
func setupServers(conf *config.Config, store interfaces.ISeriesStore, appLogger *logger.Logger) []interfaces.IDataExchanger {
	servers := []interfaces.IDataExchanger{
		server.NewHTTPServer(conf.MConfig, store, appLogger.Named("HTTPServer")),
	}
	if conf.GrpcPort == 0 {
		appLogger.Info("gRPC query service disabled")
		return servers
	}
	return append(servers, pb.NewGRPCServer(conf.MConfig, store, appLogger.Named("GRPCServer")))
}

// startServers runs every server in its own goroutine. A failing server
// is reported on the returned channel.
func startServers(servers []interfaces.IDataExchanger, appLogger *logger.Logger) <-chan error {
	failed := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv interfaces.IDataExchanger) {
			if err := srv.Start(); err != nil {
				appLogger.Error("Server failed: %v", err)
				failed <- err
			}
		}(srv)
	}
	return failed
}

// stopServers stops in reverse start order.
func stopServers(servers []interfaces.IDataExchanger, appLogger *logger.Logger) {
	for i := len(servers) - 1; i >= 0; i-- {
		if err := servers[i].Stop(); err != nil {
			appLogger.Error("Shutdown failed: %v", err)
		}
	}
}
