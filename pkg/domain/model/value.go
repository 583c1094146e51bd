package model

import (
	"encoding/json"
	"strconv"
)

type valueState uint8

const (
	valueMissing valueState = iota
	valueText
	valueNumber
)

// Value is one normalized cell. The zero Value is missing.
type Value struct {
	text   string
	number float64
	state  valueState
}

// MissingValue returns a missing cell
func MissingValue() Value {
	return Value{}
}

// TextValue returns a text cell. Empty text is missing.
func TextValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{text: s, state: valueText}
}

// NumberValue returns a numeric cell
func NumberValue(f float64) Value {
	return Value{number: f, state: valueNumber}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.state == valueMissing
}

// Text returns the cell as text; missing cells yield ""
func (v Value) Text() string {
	switch v.state {
	case valueText:
		return v.text
	case valueNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	default:
		return ""
	}
}

// Number returns the numeric form of a coerced cell
func (v Value) Number() (float64, bool) {
	if v.state != valueNumber {
		return 0, false
	}
	return v.number, true
}

// MarshalJSON encodes missing as null, numbers as JSON numbers and text as strings
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.state {
	case valueText:
		return json.Marshal(v.text)
	case valueNumber:
		return json.Marshal(v.number)
	default:
		return []byte("null"), nil
	}
}

// Number is an optional numeric field of a record
type Number struct {
	Value float64
	Valid bool
}

// Some returns a valid Number
func Some(v float64) Number {
	return Number{Value: v, Valid: true}
}

// NumberOf converts a coerced cell into a Number
func NumberOf(v Value) Number {
	f, ok := v.Number()
	return Number{Value: f, Valid: ok}
}

// MarshalJSON encodes an invalid Number as null
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n Number) String() string {
	if !n.Valid {
		return "-"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}
