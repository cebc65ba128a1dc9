package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketdata-manager/core/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorServer(t *testing.T, status int, body string) fetch.VendorConfig {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return fetch.VendorConfig{APIKey: "test-key", BaseURL: srv.URL}
}

func TestFMPSourceReturnsPayload(t *testing.T) {
	body := `[{"symbol":"AAPL","price":189.5,"change":1.2,"volume":1000,"timestamp":1700000000}]`
	src := NewFMPSource(vendorServer(t, http.StatusOK, body))

	payload, err := src.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.JSONEq(t, body, string(payload))
}

func TestFMPSourceEmptyArrayIsNotFound(t *testing.T) {
	src := NewFMPSource(vendorServer(t, http.StatusOK, `[]`))

	_, err := src.Fetch(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, fetch.KindNotFound, fetch.KindOf(err))
	assert.False(t, fetch.IsRetryable(err))
}

func TestFMPSourceRateLimitIsRetryable(t *testing.T) {
	src := NewFMPSource(vendorServer(t, http.StatusTooManyRequests, `{}`))

	_, err := src.Fetch(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, fetch.KindRateLimited, fetch.KindOf(err))
	assert.True(t, fetch.IsRetryable(err))
}

func TestFMPSourceMalformedBodyIsDataIntegrity(t *testing.T) {
	src := NewFMPSource(vendorServer(t, http.StatusOK, `not json`))

	_, err := src.Fetch(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, fetch.KindDataIntegrity, fetch.KindOf(err))
}

func TestPolygonSourceEmptyResultsIsNotFound(t *testing.T) {
	src := NewPolygonSource(vendorServer(t, http.StatusOK, `{"resultsCount":0,"results":[]}`))

	_, err := src.Fetch(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, fetch.KindNotFound, fetch.KindOf(err))
}

func TestPolygonSourceAuthFailure(t *testing.T) {
	src := NewPolygonSource(vendorServer(t, http.StatusUnauthorized, `{}`))

	_, err := src.Fetch(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, fetch.KindAuthFailed, fetch.KindOf(err))
}

func TestStooqSourceNoDataIsNotFound(t *testing.T) {
	body := "Symbol,Date,Time,Open,High,Low,Close,Volume\nNOPE.US,N/D,N/D,N/D,N/D,N/D,N/D,N/D\n"
	src := NewStooqSource(vendorServer(t, http.StatusOK, body))

	_, err := src.Fetch(context.Background(), "NOPE.US")
	require.Error(t, err)
	assert.Equal(t, fetch.KindNotFound, fetch.KindOf(err))
}

func TestStooqSourceReturnsCSV(t *testing.T) {
	body := "Symbol,Date,Time,Open,High,Low,Close,Volume\nAAPL.US,2026-08-28,22:00:00,188.1,190.4,187.9,189.5,1000\n"
	src := NewStooqSource(vendorServer(t, http.StatusOK, body))

	payload, err := src.Fetch(context.Background(), "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, body, string(payload))
}
