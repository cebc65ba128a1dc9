package instruments

import "time"

// Instrument represents one row of the instruments table.
type Instrument struct {
	// SID is the typed entity identifier. Issued once, never mutated.
	SID int64 `gorm:"column:sid;primaryKey" json:"sid"`

	// Symbol is the canonical trading symbol, unique across all types.
	Symbol string `gorm:"column:symbol;uniqueIndex;size:32" json:"symbol"`

	// Name is the display name, when known.
	Name string `gorm:"column:name;size:256" json:"name,omitempty"`

	// Type is the sid.Type string the SID was issued under.
	Type string `gorm:"column:type;size:32;index" json:"type"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the gorm table name.
func (Instrument) TableName() string {
	return "instruments"
}
