// Package instruments maintains the instrument registry: the canonical
// (SID, symbol, type) triple every loader keys its work on.
//
// EnsureInstrument is the single place new SIDs are issued. The sequence
// generator for a type is seeded once per process from a scan of the
// persisted identifiers and then owned exclusively by this service;
// concurrent requests for the same unknown symbol are collapsed with
// singleflight so a batch of loader tasks cannot race two SIDs into
// existence for one symbol.
package instruments
