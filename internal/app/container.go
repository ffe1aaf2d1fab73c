package app

import (
	"log"

	"arbetsdata/internal/cache"
	"arbetsdata/internal/config"
	"arbetsdata/internal/dataaccess"
	"arbetsdata/internal/store"
)

// Container wires the read-side dependencies: parquet sink, data access
// service and the optional Redis cache.
type Container struct {
	Config config.Config
	Sink   *store.Sink
	Data   *dataaccess.Service
	Cache  *cache.Redis
}

func NewContainer(cfg config.Config, logger *log.Logger) *Container {
	if logger == nil {
		logger = log.Default()
	}

	sink := store.NewSink(cfg.Data.DataDir, logger)
	return &Container{
		Config: cfg,
		Sink:   sink,
		Data:   dataaccess.NewService(sink, logger),
		Cache:  cache.NewRedis(cfg.Redis, logger),
	}
}
