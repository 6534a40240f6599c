package main

import (
	"gpu-price-tracker/src/config"
	datasource "gpu-price-tracker/src/data_source"
	"gpu-price-tracker/src/data_source/file"
	"gpu-price-tracker/src/data_source/marketplace"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/network"
	"gpu-price-tracker/src/storage"
)

// -----------------------------------------------------------------------------

// setupStore opens and initializes the configured series store.
func setupStore(conf *config.Config, appLogger *logger.Logger) (interfaces.ISeriesStore, error) {
	store, err := storage.NewSeriesStore(conf.MConfig, appLogger.Named("Storage"))
	if err != nil {
		appLogger.Critical("Failed to open series store: %v", err)
		return nil, err
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to initialize series store: %v", err)
		store.Close()
		return nil, err
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// setupSources registers the listing sources. A fixture replaces the live
// marketplace.
func setupSources(conf *config.Config, fixture string, appLogger *logger.Logger) (*datasource.MultiSourceManager, error) {
	multiSource := datasource.NewMultiSourceManager(nil, appLogger.Named("Sources"))

	var source interfaces.IListingSource
	if fixture != "" {
		source = file.NewFileSource(fixture, appLogger.Named("FileSource"))
	} else {
		netMgr := network.NewHTTPNetworkManager(conf.MConfig, appLogger.Named("Network"))
		source = marketplace.NewMarketplaceSource(conf.MConfig, netMgr, appLogger.Named("Marketplace"))
	}
	if err := multiSource.AddSource(source); err != nil {
		return nil, err
	}
	return multiSource, nil
}

// -----------------------------------------------------------------------------

// setupArchive returns nil when archiving is disabled.
func setupArchive(conf *config.Config, appLogger *logger.Logger) interfaces.IArchive {
	if !conf.Storage.ArchiveEnabled {
		return nil
	}
	return storage.NewArchiveWriter(conf.MConfig, appLogger.Named("Archive"))
}
