package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ValueKind discriminates the closed set of attribute value types.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
	KindBool   ValueKind = "bool"
	KindTime   ValueKind = "time"
	KindNull   ValueKind = "null"
)

// AttrValue is a closed variant over the types an entity attribute may
// hold. Keeping the set closed (instead of `any`) makes rule matching
// and serialization total functions over the possible shapes.
type AttrValue struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	t    time.Time
}

// String constructs a string attribute value.
func String(s string) AttrValue { return AttrValue{kind: KindString, str: s} }

// Number constructs a numeric attribute value.
func Number(n float64) AttrValue { return AttrValue{kind: KindNumber, num: n} }

// Bool constructs a boolean attribute value.
func Bool(b bool) AttrValue { return AttrValue{kind: KindBool, b: b} }

// Time constructs a timestamp attribute value.
func Time(t time.Time) AttrValue { return AttrValue{kind: KindTime, t: t} }

// Null constructs an explicit null attribute value.
func Null() AttrValue { return AttrValue{kind: KindNull} }

// Kind returns the discriminant of the value.
func (v AttrValue) Kind() ValueKind {
	if v.kind == "" {
		return KindNull
	}
	return v.kind
}

// AsString returns the value rendered as a string. Numbers, booleans and
// timestamps are formatted; null renders as the empty string. Foreign-key
// resolution in rule matching relies on this being total.
func (v AttrValue) AsString() string {
	switch v.Kind() {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// AsNumber returns the numeric value and true, or (0, false) for
// non-numeric kinds.
func (v AttrValue) AsNumber() (float64, bool) {
	if v.Kind() == KindNumber {
		return v.num, true
	}
	return 0, false
}

// AsBool returns the boolean value and true, or (false, false) for
// non-boolean kinds.
func (v AttrValue) AsBool() (bool, bool) {
	if v.Kind() == KindBool {
		return v.b, true
	}
	return false, false
}

// AsTime returns the timestamp value and true, or (zero, false) for
// non-timestamp kinds.
func (v AttrValue) AsTime() (time.Time, bool) {
	if v.Kind() == KindTime {
		return v.t, true
	}
	return time.Time{}, false
}

// IsNull reports whether the value is the null variant.
func (v AttrValue) IsNull() bool { return v.Kind() == KindNull }

// MarshalJSON renders the value as its natural JSON type.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339))
	case KindNull:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("attr value: unknown kind %q", v.kind)
	}
}

// UnmarshalJSON accepts any JSON scalar. Strings that parse as RFC 3339
// timestamps become timestamp values; arrays and objects are rejected.
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Null()
	case bool:
		*v = Bool(x)
	case float64:
		*v = Number(x)
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			*v = Time(t)
		} else {
			*v = String(x)
		}
	default:
		return fmt.Errorf("attr value: unsupported JSON type %T", raw)
	}
	return nil
}
