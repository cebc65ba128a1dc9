package profiles

import "time"

// CompanyProfile is the stored company metadata for one instrument.
type CompanyProfile struct {
	// SID is the instrument's entity identifier.
	SID int64 `gorm:"column:sid;primaryKey" json:"sid"`

	// Symbol is the canonical trading symbol.
	Symbol string `gorm:"column:symbol;size:32;index" json:"symbol"`

	// Name is the registered company name.
	Name string `gorm:"column:name;size:256" json:"name"`

	// Sector and Industry classify the company, when the vendor
	// provides them.
	Sector   string `gorm:"column:sector;size:128" json:"sector,omitempty"`
	Industry string `gorm:"column:industry;size:128" json:"industry,omitempty"`

	// Exchange is the primary listing venue.
	Exchange string `gorm:"column:exchange;size:64" json:"exchange,omitempty"`

	// Website is the company homepage.
	Website string `gorm:"column:website;size:256" json:"website,omitempty"`

	// Description is the vendor's company summary.
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`

	// MarketCap is the market capitalization in the listing currency.
	MarketCap float64 `gorm:"column:market_cap" json:"market_cap,omitempty"`

	// Source is the vendor tag the payload came from.
	Source string `gorm:"column:source;size:32" json:"source"`

	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the gorm table name.
func (CompanyProfile) TableName() string {
	return "company_profiles"
}
