// Package sid implements the typed entity identifier (SID) scheme.
//
// A SID is a single 64-bit value that multiplexes heterogeneous entity
// universes into one key space. The top bits carry a type prefix whose
// width depends on the expected universe size of the type:
//
//   - 4-bit prefixes for high-frequency types (equities, ETFs, funds),
//     leaving 60 bits for the sequence number
//   - 5-bit prefixes for medium types (crypto, indices, currencies),
//     leaving 59 bits
//   - 6-bit prefixes for low-frequency types (bonds, options, futures),
//     leaving 58 bits
//
// Prefixes are partitioned so no two types ever produce overlapping bit
// patterns, even though the prefix length varies by class. The registry
// is validated for pairwise prefix-freedom at package init.
//
// Decoding is total: every int64 decodes to some (type, sequence) pair,
// with TypeOther as the fallback for unassigned patterns.
//
// # Components
//
//   - Encode / Decode: the pure codec
//   - Generator: issues the next unused sequence number for one type,
//     seeded from a scan of already-persisted identifiers
package sid
