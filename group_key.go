package keel

import "github.com/keeldata/keel/values"

// GroupKey identifies the set of rows that share the same values for a
// set of key columns. Implementations are immutable.
type GroupKey interface {
	NCols() int
	Col(idx int) ColMeta

	HasCol(label string) bool
	Index(label string) int
	LabelValue(label string) values.Value

	IsNull(j int) bool
	Value(j int) values.Value

	// Sorted returns a view of the key with its columns in label order.
	// Keys with the same columns in a different order compare equal.
	Sorted() GroupKey

	String() string
}

// GroupKeyEqual reports whether the two keys have the same columns and
// values. Null key values compare equal to each other so that rows with
// a null key are assigned to the same group.
func GroupKeyEqual(a, b GroupKey) bool {
	a, b = a.Sorted(), b.Sorted()

	if a.NCols() != b.NCols() {
		return false
	}
	for i := 0; i < a.NCols(); i++ {
		if a.Col(i) != b.Col(i) {
			return false
		}
		if anull, bnull := a.IsNull(i), b.IsNull(i); anull && bnull {
			continue
		} else if anull || bnull {
			return false
		}
		if !a.Value(i).Equal(b.Value(i)) {
			return false
		}
	}
	return true
}

// GroupKeyLess determines if the former key is lexicographically less
// than the latter. A missing column sorts before any present column and
// a null value sorts before any non-null value.
func GroupKeyLess(a, b GroupKey) bool {
	a, b = a.Sorted(), b.Sorted()

	min := a.NCols()
	if b.NCols() < min {
		min = b.NCols()
	}

	for i := 0; i < min; i++ {
		aCol, bCol := a.Col(i), b.Col(i)
		if aCol.Label != bCol.Label {
			// The key missing the label at this position is the
			// lesser of the two.
			return aCol.Label > bCol.Label
		}
		if aCol.Type != bCol.Type {
			return aCol.Type < bCol.Type
		}

		if anull, bnull := a.IsNull(i), b.IsNull(i); anull && bnull {
			continue
		} else if anull {
			return true
		} else if bnull {
			return false
		}

		if c := a.Value(i).Compare(b.Value(i)); c != 0 {
			return c < 0
		}
	}

	// All shared columns are equal so the key with fewer columns is
	// the lesser.
	return a.NCols() < b.NCols()
}
