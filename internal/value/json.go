package value

import (
	"encoding/json"
	"fmt"
)

// jsonAttributeValue mirrors the wire shape DynamoDB's JSON protocol uses
// for an attribute value: exactly one of these fields is present, keyed by
// the same type-descriptor tags TypeDescriptor returns. Grounded on the
// shape aws-sdk-go-v2/service/dynamodb/types.AttributeValue's JSON
// protocol marshaler produces, reimplemented by hand since this package
// defines its own tagged union instead of the SDK's interface type.
type jsonAttributeValue struct {
	S    *string             `json:"S,omitempty"`
	N    *string             `json:"N,omitempty"`
	B    []byte              `json:"B,omitempty"`
	BOOL *bool               `json:"BOOL,omitempty"`
	NULL *bool               `json:"NULL,omitempty"`
	SS   []string            `json:"SS,omitempty"`
	NS   []string            `json:"NS,omitempty"`
	BS   [][]byte            `json:"BS,omitempty"`
	L    []AttributeValue    `json:"L,omitempty"`
	M    map[string]AttributeValue `json:"M,omitempty"`
}

// MarshalJSON renders an AttributeValue in DynamoDB's wire shape, e.g.
// {"S":"hello"} or {"N":"3"} or {"M":{"k":{"S":"v"}}}.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	var j jsonAttributeValue
	switch v.Kind {
	case KindString:
		j.S = &v.S
	case KindNumber:
		j.N = &v.N
	case KindBinary:
		j.B = v.B
	case KindBool:
		b := v.Bool
		j.BOOL = &b
	case KindNull:
		t := true
		j.NULL = &t
	case KindStringSet:
		j.SS = v.SS
	case KindNumberSet:
		j.NS = v.NS
	case KindBinarySet:
		j.BS = v.BS
	case KindList:
		j.L = v.L
	case KindMap:
		j.M = v.M
	default:
		return nil, fmt.Errorf("value: unknown attribute kind %d", v.Kind)
	}
	return json.Marshal(j)
}

// UnmarshalJSON parses DynamoDB's wire shape back into an AttributeValue.
// B and BS decode standard base64, matching the wire protocol (json.Marshal
// of []byte already produces base64, so the symmetry is automatic via
// encoding/json's []byte support).
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var j jsonAttributeValue
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	switch {
	case j.S != nil:
		*v = String(*j.S)
	case j.N != nil:
		*v = Number(*j.N)
	case j.B != nil:
		*v = Binary(j.B)
	case j.BOOL != nil:
		*v = Bool(*j.BOOL)
	case j.NULL != nil:
		*v = Null()
	case j.SS != nil:
		*v = StringSet(j.SS)
	case j.NS != nil:
		*v = NumberSet(j.NS)
	case j.BS != nil:
		*v = BinarySet(j.BS)
	case j.L != nil:
		*v = List(j.L)
	case j.M != nil:
		*v = Map(j.M)
	default:
		*v = Null()
	}
	return nil
}
