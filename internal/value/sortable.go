package value

import (
	"bytes"
	"strconv"
)

// SortableKind mirrors the three scalar variants eligible to be a sort key.
type SortableKind int

const (
	SortableNone SortableKind = iota // sentinel: tables with no sort key
	SortableString
	SortableNumber
	SortableBinary
)

// Sortable is the S|N|B projection of an AttributeValue used as an ordered
// map key (spec.md §4.A). The zero value is the "no sort key" sentinel,
// which forms a single equivalence class: every item in a table without a
// sort key compares equal to every other on this axis.
type Sortable struct {
	Kind SortableKind
	S    string
	N    string
	B    []byte
}

// NoSortKey is the sentinel sortable value for tables without a sort key.
var NoSortKey = Sortable{Kind: SortableNone}

// ErrInvalidKeyType is returned by FromAttributeValue when the attribute's
// Kind cannot participate in a key schema (anything but S, N, B).
type ErrInvalidKeyType struct {
	Name string
}

func (e *ErrInvalidKeyType) Error() string {
	return "invalid key type for attribute: " + e.Name
}

// FromAttributeValue projects an AttributeValue down to its Sortable form.
func FromAttributeValue(name string, v AttributeValue) (Sortable, error) {
	switch v.Kind {
	case KindString:
		return Sortable{Kind: SortableString, S: v.S}, nil
	case KindNumber:
		return Sortable{Kind: SortableNumber, N: v.N}, nil
	case KindBinary:
		return Sortable{Kind: SortableBinary, B: v.B}, nil
	default:
		return Sortable{}, &ErrInvalidKeyType{Name: name}
	}
}

// ToAttributeValue converts back to the wire-facing AttributeValue, or
// returns ok=false for the no-sort-key sentinel.
func (s Sortable) ToAttributeValue() (AttributeValue, bool) {
	switch s.Kind {
	case SortableString:
		return String(s.S), true
	case SortableNumber:
		return Number(s.N), true
	case SortableBinary:
		return Binary(s.B), true
	default:
		return AttributeValue{}, false
	}
}

// rank assigns a deterministic order to mixed variants, which must not
// legitimately co-occur in one partition (spec.md §3) but must still compare
// without panicking if they do.
func (k SortableKind) rank() int {
	switch k {
	case SortableNone:
		return 0
	case SortableString:
		return 1
	case SortableNumber:
		return 2
	case SortableBinary:
		return 3
	default:
		return 4
	}
}

// Compare implements the total order of spec.md §4.A: bytewise for strings,
// numeric for numbers (parse failure compares as equal, never panics),
// unsigned bytewise for binaries, and a deterministic fallback across
// mismatched kinds.
func Compare(a, b Sortable) int {
	if a.Kind != b.Kind {
		ra, rb := a.Kind.rank(), b.Kind.rank()
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		default:
			return 0
		}
	}
	switch a.Kind {
	case SortableNone:
		return 0
	case SortableString:
		return compareBytes([]byte(a.S), []byte(b.S))
	case SortableNumber:
		return compareNumbers(a.N, b.N)
	case SortableBinary:
		return compareBytes(a.B, b.B)
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	return bytes.Compare(a, b)
}

// parseNumber parses a decimal-string number into float64, the evaluation
// type chosen by spec.md §3 (IEEE-754 double, fidelity loss accepted per
// spec.md §9 Open Questions).
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func compareNumbers(a, b string) int {
	fa, aok := parseNumber(a)
	fb, bok := parseNumber(b)
	if !aok || !bok {
		// Parse failure must never panic; treat as equal (spec.md §4.A).
		return 0
	}
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

// Less is a convenience wrapper for use as a map/slice ordering predicate.
func Less(a, b Sortable) bool { return Compare(a, b) < 0 }

// CacheKey returns a canonical, comparable string consistent with Equal:
// two sortables that are Equal produce the same CacheKey, except for numbers
// that fail to parse, which Compare treats as equal to any number but which
// are keyed by their raw text. Go's map
// keys must be comparable, and Sortable embeds a []byte, so storage engines
// index by this string instead of the struct itself.
func (s Sortable) CacheKey() string {
	switch s.Kind {
	case SortableString:
		return "S:" + s.S
	case SortableNumber:
		f, ok := parseNumber(s.N)
		if !ok {
			return "N:" + s.N
		}
		return "N:" + strconv.FormatFloat(f, 'g', -1, 64)
	case SortableBinary:
		return "B:" + string(s.B)
	default:
		return "_"
	}
}

// Equal reports whether two sortables are equal per the total order.
func (s Sortable) Equal(o Sortable) bool { return Compare(s, o) == 0 }

// IncrementPrefix computes the exclusive upper bound for a BeginsWith(prefix)
// query (spec.md §4.G): increment the last byte that is not 0xFF, dropping
// every trailing 0xFF byte first. Returns ok=false when the prefix is empty
// or entirely 0xFF, meaning there is no finite upper bound.
func IncrementPrefix(prefix []byte) (upper []byte, ok bool) {
	i := len(prefix) - 1
	for i >= 0 && prefix[i] == 0xFF {
		i--
	}
	if i < 0 {
		return nil, false
	}
	out := make([]byte, i+1)
	copy(out, prefix[:i+1])
	out[i]++
	return out, true
}
