// Package source implements ordered source fallback with mapping
// auto-discovery.
//
// Each entity may be known to a vendor under a vendor-specific
// identifier. The Coordinator tries an ordered priority list of sources,
// resolving each vendor's identifier from the persisted source_mappings
// table (falling back to the canonical symbol when no mapping exists),
// and short-circuits on the first success. A successful fetch through a
// source with no prior mapping persists one, so repeated runs against
// the same entity need fewer trial-and-error lookups over time.
//
// Sources are tried strictly in order, never in parallel; the point of
// a priority list is to avoid redundant vendor calls once one succeeds.
package source
