package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/sid"
	"marketdata-manager/core/storage"
	"marketdata-manager/feature/instruments"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns news loading, archival and lookup.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	registry *instruments.Service

	archive storage.Client
	bucket  string

	bucketOnce sync.Once
	bucketErr  error

	pipeline        *pipeline.Pipeline
	refreshPipeline *pipeline.Pipeline

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates the news service. The archive client receives every
// raw vendor payload; a nil client disables archival.
func NewService(db *gorm.DB, logger *zap.Logger, registry *instruments.Service, archive storage.Client, bucket string, pl, refreshPl *pipeline.Pipeline) *Service {
	return &Service{
		db:              db,
		logger:          logger,
		registry:        registry,
		archive:         archive,
		bucket:          bucket,
		pipeline:        pl,
		refreshPipeline: refreshPl,
		now:             time.Now,
	}
}

// List returns stored articles for a symbol, newest first.
func (s *Service) List(ctx context.Context, symbol string, limit int) ([]NewsArticle, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []NewsArticle
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("published_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list news for %s: %w", symbol, err)
	}
	return out, nil
}

// Load runs one news batch for the given symbols.
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
			CacheKey:    pipeline.CacheKey("news", inst.Symbol),
			EndpointTag: "news",
		})
	}

	pl := s.pipeline
	if force {
		pl = s.refreshPipeline
	}

	run, _, err := pl.Run(ctx, "news", tasks, nil, s.persist)
	return run, err
}

// persist normalizes the payload into article rows and archives the raw
// bytes. Archival is best-effort: a dead object store must not fail the
// load itself.
func (s *Service) persist(ctx context.Context, task pipeline.Task, payload []byte) error {
	articles, sourceTag, err := parseArticles(payload)
	if err != nil {
		return fmt.Errorf("failed to parse news payload for %s: %w", task.Symbol, err)
	}

	for i := range articles {
		articles[i].SID = task.EntityID
		articles[i].Symbol = task.Symbol
		articles[i].Source = sourceTag
	}

	// Articles recur across loads; dedupe on URL and keep the first copy.
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&articles).Error
	if err != nil {
		return fmt.Errorf("failed to store news for %s: %w", task.Symbol, err)
	}

	s.archiveRaw(ctx, task.Symbol, payload)

	s.logger.Debug("stored news articles",
		zap.String("symbol", task.Symbol),
		zap.Int("articles", len(articles)),
		zap.String("source", sourceTag),
	)
	return nil
}

// archiveRaw writes the raw payload to the object store under
// news/<symbol>/<timestamp>.json.
func (s *Service) archiveRaw(ctx context.Context, symbol string, payload []byte) {
	if s.archive == nil {
		return
	}

	s.bucketOnce.Do(func() {
		s.bucketErr = s.ensureBucket(ctx)
	})
	if s.bucketErr != nil {
		s.logger.Warn("news archive unavailable", zap.Error(s.bucketErr))
		return
	}

	objectName := fmt.Sprintf("news/%s/%s.json", symbol, s.now().UTC().Format("20060102T150405"))
	_, err := s.archive.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		s.logger.Warn("failed to archive news payload",
			zap.String("object", objectName),
			zap.Error(err),
		)
	}
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.archive.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.archive.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create archive bucket: %w", err)
	}
	return nil
}

// parseArticles normalizes a raw vendor payload, recognized by shape: an
// FMP stock-news array or a Marketaux data envelope.
func parseArticles(payload []byte) ([]NewsArticle, string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, "", fmt.Errorf("empty payload")
	}

	if trimmed[0] == '[' {
		articles, err := parseFMPNews(trimmed)
		return articles, SourceFMP, err
	}
	articles, err := parseMarketauxNews(trimmed)
	return articles, SourceMarketaux, err
}

func parseFMPNews(payload []byte) ([]NewsArticle, error) {
	var rows []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Site          string `json:"site"`
		Text          string `json:"text"`
		PublishedDate string `json:"publishedDate"`
	}
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode fmp news: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fmp news array is empty")
	}

	articles := make([]NewsArticle, 0, len(rows))
	for _, row := range rows {
		if row.URL == "" || row.Title == "" {
			continue
		}
		a := NewsArticle{
			Title:     row.Title,
			URL:       row.URL,
			Publisher: row.Site,
			Summary:   row.Text,
		}
		if ts, err := time.Parse("2006-01-02 15:04:05", row.PublishedDate); err == nil {
			a.PublishedAt = ts.UTC()
		}
		articles = append(articles, a)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("fmp news has no usable articles")
	}
	return articles, nil
}

func parseMarketauxNews(payload []byte) ([]NewsArticle, error) {
	var envelope struct {
		Data []struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			URL         string    `json:"url"`
			Source      string    `json:"source"`
			PublishedAt time.Time `json:"published_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode marketaux news: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("marketaux news has no data")
	}

	articles := make([]NewsArticle, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		if row.URL == "" || row.Title == "" {
			continue
		}
		articles = append(articles, NewsArticle{
			Title:       row.Title,
			URL:         row.URL,
			Publisher:   row.Source,
			Summary:     row.Description,
			PublishedAt: row.PublishedAt.UTC(),
		})
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("marketaux news has no usable articles")
	}
	return articles, nil
}
