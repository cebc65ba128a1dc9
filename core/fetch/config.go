package fetch

// Config holds per-vendor credentials and endpoints. It is constructed
// once from the application config and passed into the adapters; no
// adapter reads the process environment itself.
type Config struct {
	// FMP holds settings for the Financial Modeling Prep API.
	FMP VendorConfig `mapstructure:"fmp"`
	// Polygon holds settings for the Polygon.io API.
	Polygon VendorConfig `mapstructure:"polygon"`
	// Stooq holds settings for the Stooq CSV endpoint (no key required).
	Stooq VendorConfig `mapstructure:"stooq"`
	// Marketaux holds settings for the Marketaux news API.
	Marketaux VendorConfig `mapstructure:"marketaux"`
}

// VendorConfig holds connection settings for one vendor.
type VendorConfig struct {
	// APIKey is the vendor credential. Empty disables the adapter.
	APIKey string `mapstructure:"api_key" default:""`
	// BaseURL is the API root. The zero value lets each adapter fall back
	// to its production endpoint.
	BaseURL string `mapstructure:"base_url" default:""`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
