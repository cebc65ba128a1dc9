package news

import "time"

// NewsArticle is one normalized news item tied to an instrument.
type NewsArticle struct {
	ID uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	// SID is the instrument the article was loaded for.
	SID int64 `gorm:"column:sid;index" json:"sid"`

	// Symbol is the canonical trading symbol.
	Symbol string `gorm:"column:symbol;size:32;index" json:"symbol"`

	// Title is the article headline.
	Title string `gorm:"column:title;size:512" json:"title"`

	// URL is the canonical article link. Loads deduplicate on it.
	URL string `gorm:"column:url;uniqueIndex;size:512" json:"url"`

	// Publisher is the outlet that ran the article.
	Publisher string `gorm:"column:publisher;size:128" json:"publisher,omitempty"`

	// Summary is the vendor's article summary.
	Summary string `gorm:"column:summary;type:text" json:"summary,omitempty"`

	// Source is the vendor tag the payload came from.
	Source string `gorm:"column:source;size:32" json:"source"`

	// PublishedAt is the article's publication time.
	PublishedAt time.Time `gorm:"column:published_at;index" json:"published_at"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the gorm table name.
func (NewsArticle) TableName() string {
	return "news_articles"
}
