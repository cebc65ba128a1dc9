package news

import (
	"marketdata-manager/core/apicache"
	"marketdata-manager/core/config"
	"marketdata-manager/core/fetch"
	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/source"
	"marketdata-manager/core/storage"
	"marketdata-manager/feature/instruments"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	enabled bool
	service *Service
	handler *Handler
}

// NewFeature wires the news loader. The archive client may be nil when
// object storage is not configured; loads then skip archival.
func NewFeature(db *gorm.DB, log *zap.Logger, registry *instruments.Service, archive storage.Client, cfg *config.Config) *Feature {
	adapters := []fetch.Adapter{
		NewFMPSource(cfg.Sources.FMP),
		NewMarketauxSource(cfg.Sources.Marketaux),
	}
	coordinator := source.NewCoordinator(adapters, source.NewMappingStore(db), log)
	tracker := pipeline.NewTracker(db)

	cache := apicache.NewStore(db, log, apicache.Options{Disabled: cfg.Loader.CacheDisabled})
	refreshCache := apicache.NewStore(db, log, apicache.Options{ForceRefresh: true})

	pl := pipeline.New(cache, coordinator, tracker, log, cfg.Loader)
	refreshPl := pipeline.New(refreshCache, coordinator, tracker, log, cfg.Loader)

	svc := NewService(db, log, registry, archive, cfg.Storage.Bucket, pl, refreshPl)
	return &Feature{
		enabled: cfg.Sources.FMP.APIKey != "" || cfg.Sources.Marketaux.APIKey != "",
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
	return "news"
}

// IsEnabled checks if the feature is enabled. Both news vendors need a
// credential, so the feature is off until one is configured.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
