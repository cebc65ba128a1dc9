package sid

import "fmt"

// Type identifies the entity universe a SID belongs to.
type Type string

const (
	TypeEquity     Type = "equity"
	TypeETF        Type = "etf"
	TypeMutualFund Type = "mutual_fund"
	TypeCrypto     Type = "crypto"
	TypeIndex      Type = "index"
	TypeCurrency   Type = "currency"
	TypeCommodity  Type = "commodity"
	TypeBond       Type = "bond"
	TypeOption     Type = "option"
	TypeFuture     Type = "future"
	TypeOther      Type = "other"
)

// Prefix widths per type class. The shift is the number of bits left for
// the sequence number.
const (
	shortShift  = 60 // 4-bit prefix
	mediumShift = 59 // 5-bit prefix
	longShift   = 58 // 6-bit prefix
)

// MaxSequence bounds per prefix class.
const (
	maxShortSequence  = 1<<shortShift - 1
	maxMediumSequence = 1<<mediumShift - 1
	maxLongSequence   = 1<<longShift - 1
)

// entry describes one row of the prefix registry: a type, the width of
// its prefix in bits, and the prefix value itself.
type entry struct {
	typ    Type
	width  uint // 4, 5 or 6
	prefix uint64
}

// registry is the single source of truth for prefix assignment.
// High-frequency types get the shortest prefixes. A 5-bit prefix must not
// begin with any assigned 4-bit prefix, and a 6-bit prefix must not begin
// with any assigned 4- or 5-bit prefix; validateRegistry enforces this.
var registry = []entry{
	{TypeEquity, 4, 0b0001},
	{TypeETF, 4, 0b0010},
	{TypeMutualFund, 4, 0b0011},

	{TypeCrypto, 5, 0b01000},
	{TypeIndex, 5, 0b01001},
	{TypeCurrency, 5, 0b01010},
	{TypeCommodity, 5, 0b01011},

	{TypeBond, 6, 0b011000},
	{TypeOption, 6, 0b011001},
	{TypeFuture, 6, 0b011010},
	{TypeOther, 6, 0b011111},
}

var (
	byType   = make(map[Type]entry, len(registry))
	byShort  = make(map[uint64]Type)
	byMedium = make(map[uint64]Type)
	byLong   = make(map[uint64]Type)
)

func init() {
	if err := validateRegistry(); err != nil {
		panic(err)
	}
	for _, e := range registry {
		byType[e.typ] = e
		switch e.width {
		case 4:
			byShort[e.prefix] = e.typ
		case 5:
			byMedium[e.prefix] = e.typ
		case 6:
			byLong[e.prefix] = e.typ
		}
	}
}

// validateRegistry checks that no prefix is a prefix of another, so the
// width-ordered decode can never misclassify an identifier.
func validateRegistry() error {
	for i, a := range registry {
		if a.width < 4 || a.width > 6 {
			return fmt.Errorf("sid: type %q has unsupported prefix width %d", a.typ, a.width)
		}
		if a.prefix >= 1<<a.width {
			return fmt.Errorf("sid: type %q prefix %#b does not fit in %d bits", a.typ, a.prefix, a.width)
		}
		for j, b := range registry {
			if i == j {
				continue
			}
			if a.typ == b.typ {
				return fmt.Errorf("sid: type %q registered twice", a.typ)
			}
			// Compare the shorter prefix against the leading bits of the longer.
			short, long := a, b
			if short.width > long.width {
				short, long = long, short
			}
			if long.prefix>>(long.width-short.width) == short.prefix {
				return fmt.Errorf("sid: prefixes for %q and %q overlap", a.typ, b.typ)
			}
		}
	}
	return nil
}

// shiftFor returns the sequence bit budget for a prefix width.
func shiftFor(width uint) uint {
	return 64 - width
}

// MaxSequence returns the largest sequence number encodable for t.
// Unknown types report the most conservative (6-bit class) budget.
func MaxSequence(t Type) uint64 {
	e, ok := byType[t]
	if !ok {
		return maxLongSequence
	}
	return 1<<shiftFor(e.width) - 1
}

// Encode packs a (type, sequence) pair into a single int64. Sequence
// numbers above the type's bit budget return an error; the codec never
// silently truncates.
func Encode(t Type, seq uint64) (int64, error) {
	e, ok := byType[t]
	if !ok {
		return 0, fmt.Errorf("sid: unknown type %q", t)
	}
	shift := shiftFor(e.width)
	if seq > 1<<shift-1 {
		return 0, fmt.Errorf("sid: sequence %d exceeds %d-bit budget for type %q", seq, shift, t)
	}
	return int64(e.prefix<<shift | seq), nil
}

// MustEncode is Encode for callers with compile-time-known arguments.
func MustEncode(t Type, seq uint64) int64 {
	id, err := Encode(t, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// Decode unpacks an identifier into its (type, sequence) pair.
//
// The short table is consulted first: the same top bits are reinterpreted
// at wider widths only after the narrower classes are ruled out, which is
// what makes variable-width prefixes unambiguous. Decode is total; any
// pattern outside the registry is classified as TypeOther at the 6-bit
// shift rather than treated as corruption.
func Decode(id int64) (Type, uint64) {
	u := uint64(id)
	if t, ok := byShort[u>>shortShift]; ok {
		return t, u & maxShortSequence
	}
	if t, ok := byMedium[u>>mediumShift]; ok {
		return t, u & maxMediumSequence
	}
	if t, ok := byLong[u>>longShift]; ok {
		return t, u & maxLongSequence
	}
	return TypeOther, u & maxLongSequence
}

// TypeOf returns just the decoded type of an identifier.
func TypeOf(id int64) Type {
	t, _ := Decode(id)
	return t
}

// ParseType converts a string into a registered Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := byType[t]; !ok {
		return "", fmt.Errorf("sid: unknown type %q", s)
	}
	return t, nil
}

// Types returns all registered types in registry order.
func Types() []Type {
	out := make([]Type, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.typ)
	}
	return out
}
