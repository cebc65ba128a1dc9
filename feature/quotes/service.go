package quotes

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/sid"
	"marketdata-manager/core/utils"
	"marketdata-manager/feature/instruments"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns quote loading and lookup.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	registry *instruments.Service

	pipeline        *pipeline.Pipeline
	refreshPipeline *pipeline.Pipeline
}

// NewService creates the quote service. The refresh pipeline bypasses
// the response cache; everything else is shared.
func NewService(db *gorm.DB, logger *zap.Logger, registry *instruments.Service, pl, refreshPl *pipeline.Pipeline) *Service {
	return &Service{
		db:              db,
		logger:          logger,
		registry:        registry,
		pipeline:        pl,
		refreshPipeline: refreshPl,
	}
}

// Latest returns the stored quote for a symbol, or nil when none exists.
func (s *Service) Latest(ctx context.Context, symbol string) (*Quote, error) {
	var q Quote
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&q).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up quote %s: %w", symbol, err)
	}
	return &q, nil
}

// Load runs one quote batch for the given symbols. Symbols not yet in
// the instrument registry are registered as equities; other types are
// expected to exist beforehand. With force set the response cache is
// bypassed and every symbol hits the vendors.
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
			CacheKey:    pipeline.CacheKey("quotes", inst.Symbol),
			EndpointTag: "quote",
		})
	}

	pl := s.pipeline
	if force {
		pl = s.refreshPipeline
	}

	run, _, err := pl.Run(ctx, "quotes", tasks, validateQuotable, s.persist)
	return run, err
}

// validateQuotable rejects instrument types no quote vendor covers.
// Rejected tasks are reported as skipped without any network attempt.
func validateQuotable(task pipeline.Task) error {
	typ, _ := sid.Decode(task.EntityID)
	switch typ {
	case sid.TypeBond, sid.TypeOption, sid.TypeFuture:
		return fmt.Errorf("instrument type %s is not quotable", typ)
	}
	return nil
}

// persist normalizes a vendor payload and upserts the quote row.
func (s *Service) persist(ctx context.Context, task pipeline.Task, payload []byte) error {
	data, sourceTag, err := parseQuote(payload)
	if err != nil {
		return fmt.Errorf("failed to parse quote payload for %s: %w", task.Symbol, err)
	}

	q := &Quote{
		SID:      task.EntityID,
		Symbol:   task.Symbol,
		Price:    data.price,
		Change:   data.change,
		Volume:   data.volume,
		Source:   sourceTag,
		QuotedAt: data.quotedAt,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sid"}},
		DoUpdates: clause.AssignmentColumns([]string{"symbol", "price", "change", "volume", "source", "quoted_at", "updated_at"}),
	}).Create(q).Error
	if err != nil {
		return fmt.Errorf("failed to upsert quote %s: %w", task.Symbol, err)
	}

	s.logger.Debug("stored quote",
		zap.String("symbol", task.Symbol),
		zap.Float64("price", data.price),
		zap.String("source", sourceTag),
	)
	return nil
}

type quoteData struct {
	price    float64
	change   float64
	volume   int64
	quotedAt time.Time
}

// parseQuote normalizes a raw vendor payload. The payload may come
// straight from a vendor or out of the response cache, where the source
// is no longer attached, so the format is recognized by shape: an FMP
// quote array, a Polygon aggregate envelope, or a Stooq CSV.
func parseQuote(payload []byte) (*quoteData, string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, "", fmt.Errorf("empty payload")
	}

	switch trimmed[0] {
	case '[':
		data, err := parseFMPQuote(trimmed)
		return data, SourceFMP, err
	case '{':
		data, err := parsePolygonQuote(trimmed)
		return data, SourcePolygon, err
	default:
		data, err := parseStooqQuote(trimmed)
		return data, SourceStooq, err
	}
}

func parseFMPQuote(payload []byte) (*quoteData, error) {
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode fmp quote: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fmp quote array is empty")
	}
	row := rows[0]

	data := &quoteData{
		price:  utils.ToFloat(row["price"]),
		change: utils.ToFloat(row["change"]),
		volume: int64(utils.ToFloat(row["volume"])),
	}
	if ts := int64(utils.ToFloat(row["timestamp"])); ts > 0 {
		data.quotedAt = time.Unix(ts, 0).UTC()
	}
	if data.price <= 0 {
		return nil, fmt.Errorf("fmp quote has no usable price")
	}
	return data, nil
}

func parsePolygonQuote(payload []byte) (*quoteData, error) {
	var envelope struct {
		Results []struct {
			Close     float64 `json:"c"`
			Open      float64 `json:"o"`
			Volume    float64 `json:"v"`
			Timestamp int64   `json:"t"`
		} `json:"results"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode polygon aggregate: %w", err)
	}
	if len(envelope.Results) == 0 {
		return nil, fmt.Errorf("polygon aggregate has no results")
	}
	bar := envelope.Results[0]
	if bar.Close <= 0 {
		return nil, fmt.Errorf("polygon aggregate has no usable close")
	}

	data := &quoteData{
		price:  bar.Close,
		change: bar.Close - bar.Open,
		volume: int64(bar.Volume),
	}
	if bar.Timestamp > 0 {
		data.quotedAt = time.UnixMilli(bar.Timestamp).UTC()
	}
	return data, nil
}

func parseStooqQuote(payload []byte) (*quoteData, error) {
	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode stooq csv: %w", err)
	}
	// Header row plus one data row: Symbol,Date,Time,Open,High,Low,Close,Volume.
	if len(records) < 2 || len(records[1]) < 8 {
		return nil, fmt.Errorf("stooq csv is incomplete")
	}
	row := records[1]

	closePrice, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return nil, fmt.Errorf("stooq close %q: %w", row[6], err)
	}
	openPrice, _ := strconv.ParseFloat(row[3], 64)
	volume, _ := strconv.ParseInt(row[7], 10, 64)

	data := &quoteData{
		price:  closePrice,
		change: closePrice - openPrice,
		volume: volume,
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", row[1]+" "+row[2]); err == nil {
		data.quotedAt = ts.UTC()
	}
	return data, nil
}
