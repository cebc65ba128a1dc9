// Package quotes loads the latest price per instrument from the
// configured market data vendors and serves it over HTTP.
//
// Quotes go through the full loader pipeline: the response cache is
// consulted first, misses are fetched through the concurrency gate with
// source fallback (fmp, then polygon, then stooq) and retry, and the
// normalized result is upserted into the quotes table, one row per
// instrument.
package quotes
