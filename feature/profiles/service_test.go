package profiles

import (
	"testing"

	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/sid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileFMP(t *testing.T) {
	payload := []byte(`[{
		"symbol": "AAPL",
		"companyName": "Apple Inc.",
		"sector": "Technology",
		"industry": "Consumer Electronics",
		"exchangeShortName": "NASDAQ",
		"website": "https://www.apple.com",
		"description": "Designs and sells consumer electronics.",
		"mktCap": 2900000000000
	}]`)

	p, src, err := parseProfile(payload)
	require.NoError(t, err)
	assert.Equal(t, SourceFMP, src)
	assert.Equal(t, "Apple Inc.", p.Name)
	assert.Equal(t, "Technology", p.Sector)
	assert.Equal(t, "NASDAQ", p.Exchange)
	assert.InDelta(t, 2.9e12, p.MarketCap, 1)
}

func TestParseProfileFMPStringMarketCap(t *testing.T) {
	payload := []byte(`[{"companyName": "Apple Inc.", "mktCap": "2900000000000"}]`)

	p, _, err := parseProfile(payload)
	require.NoError(t, err)
	assert.InDelta(t, 2.9e12, p.MarketCap, 1)
}

func TestParseProfilePolygon(t *testing.T) {
	payload := []byte(`{
		"status": "OK",
		"results": {
			"ticker": "AAPL",
			"name": "Apple Inc.",
			"primary_exchange": "XNAS",
			"sic_description": "Electronic Computers",
			"homepage_url": "https://www.apple.com",
			"market_cap": 2900000000000
		}
	}`)

	p, src, err := parseProfile(payload)
	require.NoError(t, err)
	assert.Equal(t, SourcePolygon, src)
	assert.Equal(t, "Apple Inc.", p.Name)
	assert.Equal(t, "XNAS", p.Exchange)
	assert.Equal(t, "Electronic Computers", p.Industry)
}

func TestParseProfileRejectsNameless(t *testing.T) {
	_, _, err := parseProfile([]byte(`[{"symbol":"AAPL"}]`))
	assert.Error(t, err)

	_, _, err = parseProfile([]byte(`{"results":{}}`))
	assert.Error(t, err)
}

func TestValidateProfilable(t *testing.T) {
	tests := []struct {
		name    string
		typ     sid.Type
		wantErr bool
	}{
		{"equity has a profile", sid.TypeEquity, false},
		{"etf has a profile", sid.TypeETF, false},
		{"crypto has no company", sid.TypeCrypto, true},
		{"currency has no company", sid.TypeCurrency, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := pipeline.Task{EntityID: sid.MustEncode(tt.typ, 1)}
			err := validateProfilable(task)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
