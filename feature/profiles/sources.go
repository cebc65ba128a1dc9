package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"marketdata-manager/core/fetch"
)

// Vendor tags for the profile sources, in default priority order.
const (
	SourceFMP     = "fmp"
	SourcePolygon = "polygon"
)

// DefaultSources is the fallback priority for profile loads.
var DefaultSources = []string{SourceFMP, SourcePolygon}

const (
	defaultFMPBaseURL     = "https://financialmodelingprep.com"
	defaultPolygonBaseURL = "https://api.polygon.io"
)

func newClient(tag string, cfg fetch.VendorConfig, fallbackBase string) *fetch.Client {
	base := cfg.BaseURL
	if base == "" {
		base = fallbackBase
	}
	timeout := 30 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return fetch.NewClient(tag, base, fetch.WithTimeout(timeout))
}

// fmpSource fetches company profiles from Financial Modeling Prep.
type fmpSource struct {
	client *fetch.Client
	apiKey string
}

// NewFMPSource creates the FMP profile adapter.
func NewFMPSource(cfg fetch.VendorConfig) fetch.Adapter {
	return &fmpSource{
		client: newClient(SourceFMP, cfg, defaultFMPBaseURL),
		apiKey: cfg.APIKey,
	}
}

func (s *fmpSource) Name() string {
	return SourceFMP
}

func (s *fmpSource) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	query := url.Values{"apikey": {s.apiKey}}
	body, err := s.client.Get(ctx, "/api/v3/profile/"+url.PathEscape(identifier), query)
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fetch.NewError(SourceFMP, fetch.KindDataIntegrity, fmt.Errorf("unexpected profile payload for %s: %w", identifier, err))
	}
	if len(rows) == 0 {
		return nil, fetch.NewError(SourceFMP, fetch.KindNotFound, fmt.Errorf("no profile for %s", identifier))
	}
	return body, nil
}

// polygonSource fetches ticker reference details from Polygon.io.
type polygonSource struct {
	client *fetch.Client
	apiKey string
}

// NewPolygonSource creates the Polygon profile adapter.
func NewPolygonSource(cfg fetch.VendorConfig) fetch.Adapter {
	return &polygonSource{
		client: newClient(SourcePolygon, cfg, defaultPolygonBaseURL),
		apiKey: cfg.APIKey,
	}
}

func (s *polygonSource) Name() string {
	return SourcePolygon
}

func (s *polygonSource) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	query := url.Values{"apiKey": {s.apiKey}}
	path := "/v3/reference/tickers/" + url.PathEscape(identifier)
	body, err := s.client.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fetch.NewError(SourcePolygon, fetch.KindDataIntegrity, fmt.Errorf("unexpected ticker payload for %s: %w", identifier, err))
	}
	if len(envelope.Results) == 0 {
		return nil, fetch.NewError(SourcePolygon, fetch.KindNotFound, fmt.Errorf("no ticker details for %s", identifier))
	}
	return body, nil
}
