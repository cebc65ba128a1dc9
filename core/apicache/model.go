package apicache

import "time"

// Entry represents one row of the api_response_cache table.
type Entry struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`

	// CacheKey uniquely identifies the request shape this response answers.
	CacheKey string `gorm:"column:cache_key;uniqueIndex;size:512"`

	// APISource is the vendor tag the payload came from.
	APISource string `gorm:"column:api_source;size:64;index"`

	// EndpointURL records where the payload was fetched. Diagnostic only.
	EndpointURL string `gorm:"column:endpoint_url;size:1024"`

	// ResponseData is the opaque serialized payload.
	ResponseData []byte `gorm:"column:response_data"`

	// StatusCode is the HTTP status of the cached response.
	StatusCode int `gorm:"column:status_code"`

	CachedAt  time.Time `gorm:"column:cached_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
}

// TableName overrides the gorm table name.
func (Entry) TableName() string {
	return "api_response_cache"
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
