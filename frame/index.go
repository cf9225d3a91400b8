package frame

import (
	"sort"

	"github.com/keeldata/keel/values"
)

// Index holds the row labels of a DataFrame or Series. An index has one
// or more levels; every level has a name (possibly empty) and one label
// value per row. Row labels need not be unique.
type Index struct {
	names  []Label
	levels [][]values.Value
}

// NewRangeIndex returns the default index of positions 0..n-1.
func NewRangeIndex(n int) *Index {
	vs := make([]values.Value, n)
	for i := range vs {
		vs[i] = values.NewInt(int64(i))
	}
	return &Index{
		names:  []Label{nil},
		levels: [][]values.Value{vs},
	}
}

// NewIndex constructs a single-level index.
func NewIndex(name Label, vs []values.Value) *Index {
	return &Index{
		names:  []Label{name},
		levels: [][]values.Value{vs},
	}
}

// NewMultiIndex constructs an index with one level per name. Every
// level must have the same number of rows.
func NewMultiIndex(names []Label, levels [][]values.Value) *Index {
	return &Index{names: names, levels: levels}
}

// Len returns the number of rows.
func (ix *Index) Len() int {
	if len(ix.levels) == 0 {
		return 0
	}
	return len(ix.levels[0])
}

// NLevels returns the number of levels.
func (ix *Index) NLevels() int {
	return len(ix.levels)
}

// Name returns the name of the given level.
func (ix *Index) Name(level int) Label {
	return ix.names[level]
}

// Value returns the label value of the given level at row i.
func (ix *Index) Value(level, i int) values.Value {
	return ix.levels[level][i]
}

// Row returns all level values for row i.
func (ix *Index) Row(i int) []values.Value {
	row := make([]values.Value, len(ix.levels))
	for l := range ix.levels {
		row[l] = ix.levels[l][i]
	}
	return row
}

// Select returns a new index containing the given rows in order.
func (ix *Index) Select(rows []int) *Index {
	levels := make([][]values.Value, len(ix.levels))
	for l, vs := range ix.levels {
		out := make([]values.Value, len(rows))
		for j, i := range rows {
			out[j] = vs[i]
		}
		levels[l] = out
	}
	names := make([]Label, len(ix.names))
	copy(names, ix.names)
	return &Index{names: names, levels: levels}
}

// sortOrder returns row positions ordered lexicographically by the
// index levels. The sort is stable so equal labels keep their relative
// order.
func (ix *Index) sortOrder() []int {
	rows := make([]int, ix.Len())
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		for l := range ix.levels {
			if c := ix.levels[l][rows[a]].Compare(ix.levels[l][rows[b]]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return rows
}

// Equal reports whether two indexes have the same names and labels.
func (ix *Index) Equal(other *Index) bool {
	if ix.NLevels() != other.NLevels() || ix.Len() != other.Len() {
		return false
	}
	for l := range ix.levels {
		if !ix.names[l].Equal(other.names[l]) {
			return false
		}
		for i := range ix.levels[l] {
			if !ix.levels[l][i].Equal(other.levels[l][i]) {
				return false
			}
		}
	}
	return true
}
