package instruments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketdata-manager/core/sid"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Service owns the instrument registry and SID issuance.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger

	// generators are seeded lazily, one per type, and exclusively owned
	// by this service for the life of the process.
	mu         sync.Mutex
	generators map[sid.Type]*sid.Generator

	sf singleflight.Group
}

// NewService creates the instrument service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:         db,
		logger:     logger,
		generators: make(map[sid.Type]*sid.Generator),
	}
}

// Get returns the instrument for a symbol, or nil when unknown.
func (s *Service) Get(ctx context.Context, symbol string) (*Instrument, error) {
	var inst Instrument
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&inst).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up instrument %s: %w", symbol, err)
	}
	return &inst, nil
}

// List returns up to limit instruments ordered by symbol.
func (s *Service) List(ctx context.Context, limit int) ([]Instrument, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	var out []Instrument
	err := s.db.WithContext(ctx).Order("symbol").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return out, nil
}

// EnsureInstrument returns the instrument for symbol, creating it with a
// freshly issued SID when it does not exist yet. Concurrent calls for
// the same symbol collapse into one issuance.
func (s *Service) EnsureInstrument(ctx context.Context, symbol string, typ sid.Type) (*Instrument, error) {
	if existing, err := s.Get(ctx, symbol); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	result, err, _ := s.sf.Do(symbol, func() (any, error) {
		// Double-check after winning the flight; a concurrent call may
		// have created the row already.
		if existing, err := s.Get(ctx, symbol); err != nil {
			return nil, err
		} else if existing != nil {
			return existing, nil
		}
		return s.create(ctx, symbol, typ)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Instrument), nil
}

func (s *Service) create(ctx context.Context, symbol string, typ sid.Type) (*Instrument, error) {
	gen, err := s.generatorFor(ctx, typ)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id, err := gen.Next()
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to issue sid for %s: %w", symbol, err)
	}

	inst := &Instrument{
		SID:       id,
		Symbol:    symbol,
		Type:      string(typ),
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(inst).Error; err != nil {
		return nil, fmt.Errorf("failed to create instrument %s: %w", symbol, err)
	}

	s.logger.Info("registered new instrument",
		zap.String("symbol", symbol),
		zap.String("type", string(typ)),
		zap.Int64("sid", id),
	)
	return inst, nil
}

// generatorFor returns the process-wide generator for a type, seeding it
// from a scan of persisted SIDs on first use.
func (s *Service) generatorFor(ctx context.Context, typ sid.Type) (*sid.Generator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen, ok := s.generators[typ]; ok {
		return gen, nil
	}

	var ids []int64
	if err := s.db.WithContext(ctx).Model(&Instrument{}).Pluck("sid", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to scan instrument sids: %w", err)
	}

	gen, err := sid.NewGenerator(typ, ids)
	if err != nil {
		return nil, err
	}
	s.generators[typ] = gen
	return gen, nil
}
