// Package frame implements the DataFrame and Series API, including the
// group-by surface validated by the conformance suite.
package frame

import "strings"

// Label names a column. Labels have one part for flat column sets and
// several parts when the frame carries multi-level column labels. The
// zero Label names nothing, which is how an unnamed series is
// represented.
type Label []string

// L constructs a label from its parts.
func L(parts ...string) Label {
	return Label(parts)
}

// IsEmpty reports whether the label names nothing.
func (l Label) IsEmpty() bool {
	return len(l) == 0
}

// NLevels returns the number of parts.
func (l Label) NLevels() int {
	return len(l)
}

// Equal reports whether two labels have the same parts.
func (l Label) Equal(other Label) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Key flattens the label into a single string usable as an engine
// column label. Parts are joined with a separator that cannot occur in
// part names.
func (l Label) Key() string {
	return strings.Join(l, "\x1f")
}

// String renders the label the way it is displayed: a bare name for a
// one-part label and a parenthesized tuple otherwise.
func (l Label) String() string {
	switch len(l) {
	case 0:
		return ""
	case 1:
		return l[0]
	default:
		return "(" + strings.Join(l, ", ") + ")"
	}
}
