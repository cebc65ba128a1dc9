package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"marketdata-manager/core/fetch"
)

// Vendor tags for the news sources, in default priority order.
const (
	SourceFMP       = "fmp"
	SourceMarketaux = "marketaux"
)

// DefaultSources is the fallback priority for news loads.
var DefaultSources = []string{SourceFMP, SourceMarketaux}

const (
	defaultFMPBaseURL       = "https://financialmodelingprep.com"
	defaultMarketauxBaseURL = "https://api.marketaux.com"

	// articleLimit caps one fetch; news endpoints page far deeper than a
	// loader run needs.
	articleLimit = 50
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

// fmpSource fetches stock news from Financial Modeling Prep.
type fmpSource struct {
	client *fetch.Client
	apiKey string
}

// NewFMPSource creates the FMP news adapter.
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
	query := url.Values{
		"tickers": {identifier},
		"limit":   {strconv.Itoa(articleLimit)},
		"apikey":  {s.apiKey},
	}
	body, err := s.client.Get(ctx, "/api/v3/stock_news", query)
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fetch.NewError(SourceFMP, fetch.KindDataIntegrity, fmt.Errorf("unexpected news payload for %s: %w", identifier, err))
	}
	if len(rows) == 0 {
		return nil, fetch.NewError(SourceFMP, fetch.KindNotFound, fmt.Errorf("no news for %s", identifier))
	}
	return body, nil
}

// marketauxSource fetches news from Marketaux.
type marketauxSource struct {
	client *fetch.Client
	apiKey string
}

// NewMarketauxSource creates the Marketaux news adapter.
func NewMarketauxSource(cfg fetch.VendorConfig) fetch.Adapter {
	return &marketauxSource{
		client: newClient(SourceMarketaux, cfg, defaultMarketauxBaseURL),
		apiKey: cfg.APIKey,
	}
}

func (s *marketauxSource) Name() string {
	return SourceMarketaux
}

func (s *marketauxSource) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	query := url.Values{
		"symbols":   {identifier},
		"limit":     {strconv.Itoa(articleLimit)},
		"api_token": {s.apiKey},
	}
	body, err := s.client.Get(ctx, "/v1/news/all", query)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fetch.NewError(SourceMarketaux, fetch.KindDataIntegrity, fmt.Errorf("unexpected news payload for %s: %w", identifier, err))
	}
	if len(envelope.Data) == 0 {
		return nil, fetch.NewError(SourceMarketaux, fetch.KindNotFound, fmt.Errorf("no news for %s", identifier))
	}
	return body, nil
}
