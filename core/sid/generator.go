package sid

import "fmt"

// Generator issues fresh identifiers for a single type.
//
// It is seeded from a scan of every identifier of that type already
// persisted, takes the maximum sequence number observed, and issues
// strictly increasing sequence numbers from there. Identifiers whose
// decoded type does not match are ignored, which guards against an
// accidental cross-type scan inflating the counter.
//
// A Generator has no cross-process coordination: two concurrently
// running generators for the same type can issue colliding sequence
// numbers. Callers own that limitation; within one instance every Next
// call returns a previously unissued number.
//
// Seeding is O(n) in the number of persisted identifiers on every
// construction. Acceptable at current universe sizes; a persisted
// last-issued counter would remove the scan if that ever changes.
type Generator struct {
	typ  Type
	next uint64
}

// NewGenerator builds a generator for t from the scanned identifiers.
func NewGenerator(t Type, scanned []int64) (*Generator, error) {
	if _, ok := byType[t]; !ok {
		return nil, fmt.Errorf("sid: unknown type %q", t)
	}
	var max uint64
	for _, id := range scanned {
		decoded, seq := Decode(id)
		if decoded != t {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return &Generator{typ: t, next: max + 1}, nil
}

// Next returns the next unissued identifier for the generator's type.
// It fails only when the type's sequence budget is exhausted.
func (g *Generator) Next() (int64, error) {
	id, err := Encode(g.typ, g.next)
	if err != nil {
		return 0, err
	}
	g.next++
	return id, nil
}

// Type returns the entity type this generator issues identifiers for.
func (g *Generator) Type() Type {
	return g.typ
}
