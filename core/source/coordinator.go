package source

import (
	"context"
	"fmt"
	"time"

	"marketdata-manager/core/fetch"

	"go.uber.org/zap"
)

// Item is one unit of fallback resolution: an entity and the canonical
// symbol used when no vendor mapping exists yet.
type Item struct {
	EntityID int64
	Symbol   string
}

// Resolved is a successful fallback resolution.
type Resolved struct {
	// Payload is the raw vendor response.
	Payload []byte
	// Source is the vendor that won.
	Source string
	// Identifier is the vendor identifier the payload was fetched under.
	Identifier string
}

// Coordinator resolves one payload per item by trying sources in
// priority order.
type Coordinator struct {
	adapters map[string]fetch.Adapter
	mappings MappingStore
	logger   *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewCoordinator builds a Coordinator over the given adapters.
func NewCoordinator(adapters []fetch.Adapter, mappings MappingStore, logger *zap.Logger) *Coordinator {
	byName := make(map[string]fetch.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Coordinator{
		adapters: byName,
		mappings: mappings,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve tries each source in priority order and returns the first
// success. On success through a source with no prior mapping, a verified
// mapping is persisted (auto-discovery); an existing mapping is
// re-verified. If every source fails, the last recorded error is
// returned.
//
// Auth failures are not subject to fallback: they abort resolution
// immediately so the operator sees the credential problem instead of a
// silently degraded source list.
func (c *Coordinator) Resolve(ctx context.Context, item Item, priority []string) (*Resolved, error) {
	if len(priority) == 0 {
		return nil, fmt.Errorf("no sources configured for entity %d", item.EntityID)
	}

	var lastErr error
	for _, sourceName := range priority {
		adapter, ok := c.adapters[sourceName]
		if !ok {
			lastErr = fmt.Errorf("no adapter registered for source %q", sourceName)
			c.logger.Warn("skipping unregistered source", zap.String("source", sourceName))
			continue
		}

		mapping, err := c.mappings.Find(ctx, item.EntityID, sourceName)
		if err != nil {
			// A mapping lookup failure only costs us the discovered
			// identifier; the canonical symbol still works.
			c.logger.Warn("mapping lookup failed, using canonical symbol",
				zap.Int64("entity_id", item.EntityID),
				zap.String("source", sourceName),
				zap.Error(err),
			)
			mapping = nil
		}

		identifier := item.Symbol
		if mapping != nil {
			identifier = mapping.SourceIdentifier
		}

		payload, err := adapter.Fetch(ctx, identifier)
		if err != nil {
			if fetch.KindOf(err) == fetch.KindAuthFailed {
				return nil, err
			}
			lastErr = err
			c.logger.Debug("source failed, trying next",
				zap.Int64("entity_id", item.EntityID),
				zap.String("source", sourceName),
				zap.Error(err),
			)
			continue
		}

		c.recordMapping(ctx, item, sourceName, identifier, mapping)

		// First success wins; no further sources are tried.
		return &Resolved{
			Payload:    payload,
			Source:     sourceName,
			Identifier: identifier,
		}, nil
	}

	return nil, lastErr
}

// recordMapping persists a newly discovered mapping or re-verifies an
// existing one. Best-effort: the payload is already in hand, so a
// mapping write failure is logged, not surfaced.
func (c *Coordinator) recordMapping(ctx context.Context, item Item, sourceName, identifier string, existing *Mapping) {
	m := &Mapping{
		EntityID:         item.EntityID,
		SourceName:       sourceName,
		SourceIdentifier: identifier,
		Verified:         true,
		LastVerifiedAt:   c.now(),
	}
	if err := c.mappings.Upsert(ctx, m); err != nil {
		c.logger.Warn("failed to persist source mapping",
			zap.Int64("entity_id", item.EntityID),
			zap.String("source", sourceName),
			zap.Error(err),
		)
		return
	}
	if existing == nil {
		c.logger.Info("discovered source mapping",
			zap.Int64("entity_id", item.EntityID),
			zap.String("source", sourceName),
			zap.String("identifier", identifier),
		)
	}
}
