package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"marketdata-manager/core/fetch"
)

// Vendor tags for the quote sources, in default priority order.
const (
	SourceFMP     = "fmp"
	SourcePolygon = "polygon"
	SourceStooq   = "stooq"
)

// DefaultSources is the fallback priority for quote loads.
var DefaultSources = []string{SourceFMP, SourcePolygon, SourceStooq}

const (
	defaultFMPBaseURL     = "https://financialmodelingprep.com"
	defaultPolygonBaseURL = "https://api.polygon.io"
	defaultStooqBaseURL   = "https://stooq.com"
)

func baseURL(cfg fetch.VendorConfig, fallback string) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return fallback
}

func vendorTimeout(cfg fetch.VendorConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// fmpSource fetches quotes from Financial Modeling Prep.
type fmpSource struct {
	client *fetch.Client
	apiKey string
}

// NewFMPSource creates the FMP quote adapter.
func NewFMPSource(cfg fetch.VendorConfig) fetch.Adapter {
	return &fmpSource{
		client: fetch.NewClient(SourceFMP, baseURL(cfg, defaultFMPBaseURL), fetch.WithTimeout(vendorTimeout(cfg))),
		apiKey: cfg.APIKey,
	}
}

func (s *fmpSource) Name() string {
	return SourceFMP
}

func (s *fmpSource) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	query := url.Values{"apikey": {s.apiKey}}
	body, err := s.client.Get(ctx, "/api/v3/quote/"+url.PathEscape(identifier), query)
	if err != nil {
		return nil, err
	}

	// FMP answers 200 with an empty array for unknown symbols.
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fetch.NewError(SourceFMP, fetch.KindDataIntegrity, fmt.Errorf("unexpected quote payload for %s: %w", identifier, err))
	}
	if len(rows) == 0 {
		return nil, fetch.NewError(SourceFMP, fetch.KindNotFound, fmt.Errorf("no quote for %s", identifier))
	}
	return body, nil
}

// polygonSource fetches the previous-day aggregate from Polygon.io.
type polygonSource struct {
	client *fetch.Client
	apiKey string
}

// NewPolygonSource creates the Polygon quote adapter.
func NewPolygonSource(cfg fetch.VendorConfig) fetch.Adapter {
	return &polygonSource{
		client: fetch.NewClient(SourcePolygon, baseURL(cfg, defaultPolygonBaseURL), fetch.WithTimeout(vendorTimeout(cfg))),
		apiKey: cfg.APIKey,
	}
}

func (s *polygonSource) Name() string {
	return SourcePolygon
}

func (s *polygonSource) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	query := url.Values{
		"apiKey":   {s.apiKey},
		"adjusted": {"true"},
	}
	path := "/v2/aggs/ticker/" + url.PathEscape(identifier) + "/prev"
	body, err := s.client.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		ResultsCount int `json:"resultsCount"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fetch.NewError(SourcePolygon, fetch.KindDataIntegrity, fmt.Errorf("unexpected aggregate payload for %s: %w", identifier, err))
	}
	if envelope.ResultsCount == 0 {
		return nil, fetch.NewError(SourcePolygon, fetch.KindNotFound, fmt.Errorf("no aggregate for %s", identifier))
	}
	return body, nil
}

// stooqSource fetches the daily quote CSV from Stooq. Stooq requires no
// API key, which makes it the fallback of last resort.
type stooqSource struct {
	client *fetch.Client
}

// NewStooqSource creates the Stooq quote adapter.
func NewStooqSource(cfg fetch.VendorConfig) fetch.Adapter {
	return &stooqSource{
		client: fetch.NewClient(SourceStooq, baseURL(cfg, defaultStooqBaseURL), fetch.WithTimeout(vendorTimeout(cfg))),
	}
}

func (s *stooqSource) Name() string {
	return SourceStooq
}

func (s *stooqSource) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	query := url.Values{
		"s": {strings.ToLower(identifier)},
		"f": {"sd2t2ohlcv"},
		"h": {""},
		"e": {"csv"},
	}
	body, err := s.client.Get(ctx, "/q/l/", query)
	if err != nil {
		return nil, err
	}

	// Unknown symbols come back as a well-formed row of "N/D" fields.
	if strings.Contains(string(body), "N/D") {
		return nil, fetch.NewError(SourceStooq, fetch.KindNotFound, fmt.Errorf("no quote for %s", identifier))
	}
	if len(strings.Split(strings.TrimSpace(string(body)), "\n")) < 2 {
		return nil, fetch.NewError(SourceStooq, fetch.KindDataIntegrity, fmt.Errorf("unexpected csv payload for %s", identifier))
	}
	return body, nil
}
