// Package profiles loads company metadata (name, sector, exchange,
// market cap) from the configured vendors and serves it over HTTP.
//
// Profiles use the same loader pipeline as quotes with a shorter source
// list: fmp first, polygon as fallback. One row per instrument; loads
// replace the stored profile.
package profiles
