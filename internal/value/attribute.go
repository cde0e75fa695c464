// Package value implements the DynamoDB attribute-value tagged union and
// the sortable scalar projection used as ordered-map keys (spec.md §3, §4.A).
//
// AttributeValue is grounded on the teacher's DynamoDB persistence code
// (infrastructure/persistence/dynamodb/*.go), which speaks the AWS SDK's
// types.AttributeValue member-struct shapes; this package mirrors that
// tagged-union idiom with its own Kind+fields struct rather than an
// interface, so the expression evaluator in ddbeval can switch on Kind
// without type assertions everywhere.
package value

import "fmt"

// Kind identifies which variant of the tagged union an AttributeValue holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBinary
	KindBool
	KindStringSet
	KindNumberSet
	KindBinarySet
	KindList
	KindMap
)

// TypeDescriptor returns the DynamoDB wire type-descriptor tag for a Kind,
// as consumed by the attribute_type() expression function (spec.md §4.I).
func (k Kind) TypeDescriptor() string {
	switch k {
	case KindString:
		return "S"
	case KindNumber:
		return "N"
	case KindBinary:
		return "B"
	case KindBool:
		return "BOOL"
	case KindNull:
		return "NULL"
	case KindStringSet:
		return "SS"
	case KindNumberSet:
		return "NS"
	case KindBinarySet:
		return "BS"
	case KindList:
		return "L"
	case KindMap:
		return "M"
	default:
		return ""
	}
}

// AttributeValue is the tagged union over DynamoDB's attribute types.
// Exactly one field is meaningful for a given Kind.
type AttributeValue struct {
	Kind Kind

	S    string
	N    string // decimal-string, preserves wire precision (spec.md §3)
	B    []byte
	Bool bool

	SS []string
	NS []string
	BS [][]byte

	L []AttributeValue
	M map[string]AttributeValue
}

func String(s string) AttributeValue          { return AttributeValue{Kind: KindString, S: s} }
func Number(n string) AttributeValue          { return AttributeValue{Kind: KindNumber, N: n} }
func Binary(b []byte) AttributeValue          { return AttributeValue{Kind: KindBinary, B: b} }
func Bool(b bool) AttributeValue              { return AttributeValue{Kind: KindBool, Bool: b} }
func Null() AttributeValue                    { return AttributeValue{Kind: KindNull} }
func StringSet(ss []string) AttributeValue    { return AttributeValue{Kind: KindStringSet, SS: ss} }
func NumberSet(ns []string) AttributeValue    { return AttributeValue{Kind: KindNumberSet, NS: ns} }
func BinarySet(bs [][]byte) AttributeValue    { return AttributeValue{Kind: KindBinarySet, BS: bs} }
func List(l []AttributeValue) AttributeValue  { return AttributeValue{Kind: KindList, L: l} }
func Map(m map[string]AttributeValue) AttributeValue {
	return AttributeValue{Kind: KindMap, M: m}
}

// IsNull reports whether this is the DynamoDB NULL type.
func (v AttributeValue) IsNull() bool { return v.Kind == KindNull }

// Len returns the element/byte count used by the size() expression
// function (spec.md §4.I): bytes for S/B, element count for L/M/sets.
func (v AttributeValue) Len() (int, bool) {
	switch v.Kind {
	case KindString:
		return len([]byte(v.S)), true
	case KindBinary:
		return len(v.B), true
	case KindList:
		return len(v.L), true
	case KindMap:
		return len(v.M), true
	case KindStringSet:
		return len(v.SS), true
	case KindNumberSet:
		return len(v.NS), true
	case KindBinarySet:
		return len(v.BS), true
	default:
		return 0, false
	}
}

func (v AttributeValue) String() string {
	switch v.Kind {
	case KindString:
		return fmt.Sprintf("S(%q)", v.S)
	case KindNumber:
		return fmt.Sprintf("N(%s)", v.N)
	case KindBinary:
		return fmt.Sprintf("B(%x)", v.B)
	case KindBool:
		return fmt.Sprintf("BOOL(%v)", v.Bool)
	case KindNull:
		return "NULL"
	default:
		return fmt.Sprintf("%s(...)", v.Kind.TypeDescriptor())
	}
}
