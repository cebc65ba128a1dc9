// Package apicache provides the persisted TTL cache for raw API responses.
//
// Every vendor response the loader pipeline fetches is cached under a
// deterministic cache key so repeated runs stay inside API quotas. The
// cache is a derived artifact, never a source of truth: every store or
// lookup failure is logged and downgraded to a miss, and a caller can
// disable it or force a refresh without touching the backing table.
//
// Entries live in the api_response_cache table. Set is an upsert with
// last-writer-wins semantics; concurrent writers to the same key are
// acceptable because entries are recomputable.
package apicache
