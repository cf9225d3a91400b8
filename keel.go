// Package keel defines the core tabular model shared by the frame API,
// the execution engine, and the reference implementation.
package keel

// ColType is the type of a column's values.
type ColType int

const (
	TInvalid ColType = iota
	TBool
	TInt
	TUInt
	TFloat
	TString
	TTime
)

// String returns a string representation of the column type.
func (t ColType) String() string {
	switch t {
	case TInvalid:
		return "invalid"
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
		return "unknown"
	}
}

// Numeric reports whether values of this type can participate in
// arithmetic reductions.
func (t ColType) Numeric() bool {
	switch t {
	case TInt, TUInt, TFloat:
		return true
	default:
		return false
	}
}

// ColMeta contains the information about a column within a table buffer.
type ColMeta struct {
	// Label is the label of the column.
	Label string
	// Type is the type of the column.
	Type ColType
}

// ColIdx returns the index of the column with the given label
// or -1 if the column does not exist.
func ColIdx(label string, cols []ColMeta) int {
	for j, c := range cols {
		if c.Label == label {
			return j
		}
	}
	return -1
}

// HasCol reports whether a column with the given label exists.
func HasCol(label string, cols []ColMeta) bool {
	return ColIdx(label, cols) >= 0
}

// ContainsStr reports whether the given string is present in strs.
func ContainsStr(strs []string, str string) bool {
	for _, s := range strs {
		if str == s {
			return true
		}
	}
	return false
}
