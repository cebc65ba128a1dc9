package quotes

import "time"

// Quote is the latest known price for one instrument. The table holds a
// single row per SID; every successful load replaces it.
type Quote struct {
	// SID is the instrument's entity identifier.
	SID int64 `gorm:"column:sid;primaryKey" json:"sid"`

	// Symbol is the canonical trading symbol.
	Symbol string `gorm:"column:symbol;size:32;index" json:"symbol"`

	// Price is the last traded or closing price.
	Price float64 `gorm:"column:price" json:"price"`

	// Change is the absolute price change against the previous close.
	Change float64 `gorm:"column:change" json:"change"`

	// Volume is the traded volume the quote was derived from.
	Volume int64 `gorm:"column:volume" json:"volume"`

	// Source is the vendor tag the payload came from.
	Source string `gorm:"column:source;size:32" json:"source"`

	// QuotedAt is the vendor's own timestamp for the quote, when the
	// payload carries one.
	QuotedAt time.Time `gorm:"column:quoted_at" json:"quoted_at"`

	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the gorm table name.
func (Quote) TableName() string {
	return "quotes"
}
