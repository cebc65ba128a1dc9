package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/sid"
	"marketdata-manager/core/utils"
	"marketdata-manager/feature/instruments"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns profile loading and lookup.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	registry *instruments.Service

	pipeline        *pipeline.Pipeline
	refreshPipeline *pipeline.Pipeline
}

// NewService creates the profile service.
func NewService(db *gorm.DB, logger *zap.Logger, registry *instruments.Service, pl, refreshPl *pipeline.Pipeline) *Service {
	return &Service{
		db:              db,
		logger:          logger,
		registry:        registry,
		pipeline:        pl,
		refreshPipeline: refreshPl,
	}
}

// Get returns the stored profile for a symbol, or nil when none exists.
func (s *Service) Get(ctx context.Context, symbol string) (*CompanyProfile, error) {
	var p CompanyProfile
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile %s: %w", symbol, err)
	}
	return &p, nil
}

// Load runs one profile batch for the given symbols.
func (s *Service) Load(ctx context.Context, symbols []string, force bool) (*pipeline.BatchRun, error) {
	tasks := make([]pipeline.Task, 0, len(symbols))
	for _, symbol := range symbols {
		inst, err := s.registry.EnsureInstrument(ctx, symbol, sid.TypeEquity)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve instrument %s: %w", symbol, err)
		}
		tasks = append(tasks, pipeline.Task{
			EntityID:    inst.SID,
			Symbol:      inst.Symbol,
			Sources:     DefaultSources,
			CacheKey:    pipeline.CacheKey("profiles", inst.Symbol),
			EndpointTag: "profile",
		})
	}

	pl := s.pipeline
	if force {
		pl = s.refreshPipeline
	}

	run, _, err := pl.Run(ctx, "profiles", tasks, validateProfilable, s.persist)
	return run, err
}

// validateProfilable rejects instrument types that carry no company
// behind them.
func validateProfilable(task pipeline.Task) error {
	typ, _ := sid.Decode(task.EntityID)
	switch typ {
	case sid.TypeEquity, sid.TypeETF:
		return nil
	}
	return fmt.Errorf("instrument type %s has no company profile", typ)
}

// persist normalizes a vendor payload and upserts the profile row.
func (s *Service) persist(ctx context.Context, task pipeline.Task, payload []byte) error {
	profile, sourceTag, err := parseProfile(payload)
	if err != nil {
		return fmt.Errorf("failed to parse profile payload for %s: %w", task.Symbol, err)
	}

	profile.SID = task.EntityID
	profile.Symbol = task.Symbol
	profile.Source = sourceTag

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"symbol", "name", "sector", "industry", "exchange",
			"website", "description", "market_cap", "source", "updated_at",
		}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", task.Symbol, err)
	}

	s.logger.Debug("stored company profile",
		zap.String("symbol", task.Symbol),
		zap.String("source", sourceTag),
	)
	return nil
}

// parseProfile normalizes a raw vendor payload, recognized by shape the
// same way quote payloads are: an FMP profile array or a Polygon ticker
// details envelope.
func parseProfile(payload []byte) (*CompanyProfile, string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, "", fmt.Errorf("empty payload")
	}

	if trimmed[0] == '[' {
		p, err := parseFMPProfile(trimmed)
		return p, SourceFMP, err
	}
	p, err := parsePolygonProfile(trimmed)
	return p, SourcePolygon, err
}

func parseFMPProfile(payload []byte) (*CompanyProfile, error) {
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode fmp profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fmp profile array is empty")
	}
	row := rows[0]

	name, _ := row["companyName"].(string)
	if name == "" {
		return nil, fmt.Errorf("fmp profile has no company name")
	}

	sector, _ := row["sector"].(string)
	industry, _ := row["industry"].(string)
	exchange, _ := row["exchangeShortName"].(string)
	website, _ := row["website"].(string)
	description, _ := row["description"].(string)

	return &CompanyProfile{
		Name:        name,
		Sector:      sector,
		Industry:    industry,
		Exchange:    exchange,
		Website:     website,
		Description: description,
		MarketCap:   utils.ToFloat(row["mktCap"]),
	}, nil
}

func parsePolygonProfile(payload []byte) (*CompanyProfile, error) {
	var envelope struct {
		Results struct {
			Name            string  `json:"name"`
			PrimaryExchange string  `json:"primary_exchange"`
			SICDescription  string  `json:"sic_description"`
			HomepageURL     string  `json:"homepage_url"`
			Description     string  `json:"description"`
			MarketCap       float64 `json:"market_cap"`
		} `json:"results"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode polygon ticker details: %w", err)
	}
	if envelope.Results.Name == "" {
		return nil, fmt.Errorf("polygon ticker details have no name")
	}

	return &CompanyProfile{
		Name:        envelope.Results.Name,
		Industry:    envelope.Results.SICDescription,
		Exchange:    envelope.Results.PrimaryExchange,
		Website:     envelope.Results.HomepageURL,
		Description: envelope.Results.Description,
		MarketCap:   envelope.Results.MarketCap,
	}, nil
}
