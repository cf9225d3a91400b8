// Package values declares the dynamically typed scalar values that flow
// through keel columns and group keys.
package values

import (
	"fmt"
	"time"
)

// Time is a nanosecond precision timestamp.
type Time int64

// String returns the time formatted in RFC3339Nano.
func (t Time) String() string {
	return time.Unix(0, int64(t)).UTC().Format(time.RFC3339Nano)
}

// Type is the type of a scalar value.
type Type int

const (
	TInvalid Type = iota
	TBool
	TInt
	TUInt
	TFloat
	TString
	TTime
)

func (t Type) String() string {
	switch t {
	case TBool:
		return "bool"
	case TInt:
		return "int"
	case TUInt:
		return "uint"
	case TFloat:
		return "float"
	case TString:
		return "string"
	case TTime:
		return "time"
	default:
		return "invalid"
	}
}

// Value is an immutable scalar. A Value is either null or holds data of
// its declared type. Accessors for the wrong type panic, accessing a
// null value panics.
type Value struct {
	t Type
	v interface{}
}

// New constructs a value from a native Go value. It panics if v is of
// an unsupported type.
func New(v interface{}) Value {
	switch v := v.(type) {
	case bool:
		return NewBool(v)
	case int64:
		return NewInt(v)
	case int:
		return NewInt(int64(v))
	case uint64:
		return NewUInt(v)
	case float64:
		return NewFloat(v)
	case string:
		return NewString(v)
	case Time:
		return NewTime(v)
	case nil:
		return NewNull(TInvalid)
	default:
		panic(fmt.Errorf("unsupported value of type %T", v))
	}
}

func NewBool(v bool) Value     { return Value{t: TBool, v: v} }
func NewInt(v int64) Value     { return Value{t: TInt, v: v} }
func NewUInt(v uint64) Value   { return Value{t: TUInt, v: v} }
func NewFloat(v float64) Value { return Value{t: TFloat, v: v} }
func NewString(v string) Value { return Value{t: TString, v: v} }
func NewTime(v Time) Value     { return Value{t: TTime, v: v} }

// NewNull constructs a null value of the given type.
func NewNull(t Type) Value { return Value{t: t} }

// Null is the untyped null value.
var Null = NewNull(TInvalid)

// Type returns the declared type of the value.
func (v Value) Type() Type { return v.t }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.v == nil }

func (v Value) checkType(want Type) {
	if v.t != want {
		panic(fmt.Errorf("cannot access %v as %v", v.t, want))
	}
	if v.v == nil {
		panic(fmt.Errorf("cannot access a null value as %v", want))
	}
}

func (v Value) Bool() bool {
	v.checkType(TBool)
	return v.v.(bool)
}

func (v Value) Int() int64 {
	v.checkType(TInt)
	return v.v.(int64)
}

func (v Value) UInt() uint64 {
	v.checkType(TUInt)
	return v.v.(uint64)
}

func (v Value) Float() float64 {
	v.checkType(TFloat)
	return v.v.(float64)
}

func (v Value) Str() string {
	v.checkType(TString)
	return v.v.(string)
}

func (v Value) Time() Time {
	v.checkType(TTime)
	return v.v.(Time)
}

// Equal reports whether the two values have the same type and data.
// Null values of any type compare equal to each other.
func (v Value) Equal(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.t != other.t {
		return false
	}
	return v.v == other.v
}

// Compare returns a negative number if v sorts before other, a positive
// number if it sorts after, and zero when they are equal. Null sorts
// before every non-null value and values of different types order by
// type.
func (v Value) Compare(other Value) int {
	if v.IsNull() || other.IsNull() {
		switch {
		case v.IsNull() && other.IsNull():
			return 0
		case v.IsNull():
			return -1
		default:
			return 1
		}
	}
	if v.t != other.t {
		return int(v.t) - int(other.t)
	}
	switch v.t {
	case TBool:
		a, b := v.v.(bool), other.v.(bool)
		switch {
		case a == b:
			return 0
		case b:
			return -1
		default:
			return 1
		}
	case TInt:
		return compareInt64(v.v.(int64), other.v.(int64))
	case TUInt:
		a, b := v.v.(uint64), other.v.(uint64)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	case TFloat:
		a, b := v.v.(float64), other.v.(float64)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	case TString:
		a, b := v.v.(string), other.v.(string)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	case TTime:
		return compareInt64(int64(v.v.(Time)), int64(other.v.(Time)))
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String returns a string representation of the value.
func (v Value) String() string {
	if v.IsNull() {
		return "<null>"
	}
	switch v.t {
	case TString:
		return v.v.(string)
	case TTime:
		return v.v.(Time).String()
	default:
		return fmt.Sprintf("%v", v.v)
	}
}
