package source

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mapping represents one row of the source_mappings table: the identifier
// a specific vendor knows an entity under.
type Mapping struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`

	// EntityID is the entity's SID.
	EntityID int64 `gorm:"column:entity_id;uniqueIndex:idx_entity_source"`

	// SourceName is the vendor tag.
	SourceName string `gorm:"column:source_name;size:64;uniqueIndex:idx_entity_source"`

	// SourceIdentifier is the vendor's own identifier for the entity.
	SourceIdentifier string `gorm:"column:source_identifier;size:128"`

	// Verified is set once a fetch through this mapping has succeeded.
	Verified bool `gorm:"column:verified"`

	LastVerifiedAt time.Time `gorm:"column:last_verified_at"`
}

// TableName overrides the gorm table name.
func (Mapping) TableName() string {
	return "source_mappings"
}

// MappingStore is the persistence contract for source mappings.
type MappingStore interface {
	// Find returns the mapping for (entityID, sourceName), or nil when
	// none exists.
	Find(ctx context.Context, entityID int64, sourceName string) (*Mapping, error)

	// Upsert creates or re-verifies a mapping, unique on
	// (entity_id, source_name).
	Upsert(ctx context.Context, m *Mapping) error
}

// gormMappingStore is the gorm-backed MappingStore.
type gormMappingStore struct {
	db *gorm.DB
}

// NewMappingStore creates a MappingStore over the source_mappings table.
func NewMappingStore(db *gorm.DB) MappingStore {
	return &gormMappingStore{db: db}
}

func (s *gormMappingStore) Find(ctx context.Context, entityID int64, sourceName string) (*Mapping, error) {
	var m Mapping
	err := s.db.WithContext(ctx).
		Where("entity_id = ? AND source_name = ?", entityID, sourceName).
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *gormMappingStore) Upsert(ctx context.Context, m *Mapping) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entity_id"}, {Name: "source_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_identifier", "verified", "last_verified_at",
		}),
	}).Create(m).Error
}
