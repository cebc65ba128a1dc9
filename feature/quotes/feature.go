package quotes

import (
	"marketdata-manager/core/apicache"
	"marketdata-manager/core/config"
	"marketdata-manager/core/fetch"
	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/source"
	"marketdata-manager/feature/instruments"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature wires the quote loader: vendor adapters over the shared
// fetch client, source fallback with mapping discovery, the response
// cache and the run tracker.
func NewFeature(db *gorm.DB, log *zap.Logger, registry *instruments.Service, cfg *config.Config) *Feature {
	adapters := []fetch.Adapter{
		NewFMPSource(cfg.Sources.FMP),
		NewPolygonSource(cfg.Sources.Polygon),
		NewStooqSource(cfg.Sources.Stooq),
	}
	coordinator := source.NewCoordinator(adapters, source.NewMappingStore(db), log)
	tracker := pipeline.NewTracker(db)

	cache := apicache.NewStore(db, log, apicache.Options{Disabled: cfg.Loader.CacheDisabled})
	refreshCache := apicache.NewStore(db, log, apicache.Options{ForceRefresh: true})

	pl := pipeline.New(cache, coordinator, tracker, log, cfg.Loader)
	refreshPl := pipeline.New(refreshCache, coordinator, tracker, log, cfg.Loader)

	svc := NewService(db, log, registry, pl, refreshPl)
	return &Feature{
		service: svc,
		handler: NewHandler(svc, log),
	}
}

// Service exposes the underlying service for CLI loaders.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "quotes"
}

// IsEnabled checks if the feature is enabled. Stooq needs no credential,
// so quotes are always loadable.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
