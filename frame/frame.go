package frame

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// DataFrame is an ordered collection of equal-length series sharing a
// row index.
type DataFrame struct {
	series []*Series
	index  *Index
}

// New constructs a DataFrame from columns. The columns must have the
// same length and distinct labels. The frame gets a default range
// index.
func New(series ...*Series) (*DataFrame, error) {
	n := 0
	for i, s := range series {
		if i == 0 {
			n = s.Len()
		} else if s.Len() != n {
			return nil, errors.Newf(codes.Invalid, "column %s has %d rows, want %d", s.Name(), s.Len(), n)
		}
		for _, prev := range series[:i] {
			if prev.Name().Equal(s.Name()) {
				return nil, errors.Newf(codes.Invalid, "duplicate column %s", s.Name())
			}
		}
	}
	return &DataFrame{
		series: series,
		index:  NewRangeIndex(n),
	}, nil
}

// WithIndex returns the frame with the given row index. A frame with
// no columns takes its length from the index.
func (df *DataFrame) WithIndex(ix *Index) (*DataFrame, error) {
	if len(df.series) != 0 && ix.Len() != df.Len() {
		return nil, errors.Newf(codes.Invalid, "index of length %d does not fit a frame of length %d", ix.Len(), df.Len())
	}
	ndf := *df
	ndf.index = ix
	return &ndf, nil
}

// Len returns the number of rows.
func (df *DataFrame) Len() int {
	if len(df.series) == 0 {
		return df.index.Len()
	}
	return df.series[0].Len()
}

// NCols returns the number of columns.
func (df *DataFrame) NCols() int {
	return len(df.series)
}

// Index returns the row index.
func (df *DataFrame) Index() *Index {
	return df.index
}

// Labels returns the column labels in order.
func (df *DataFrame) Labels() []Label {
	labels := make([]Label, len(df.series))
	for i, s := range df.series {
		labels[i] = s.Name()
	}
	return labels
}

// HasCol reports whether a column with the given label exists.
func (df *DataFrame) HasCol(label Label) bool {
	for _, s := range df.series {
		if s.Name().Equal(label) {
			return true
		}
	}
	return false
}

// Col returns the column with the given label bound to the frame's
// index. The label may be a string or a Label.
func (df *DataFrame) Col(label interface{}) (*Series, error) {
	l, err := asLabel(label)
	if err != nil {
		return nil, err
	}
	for _, s := range df.series {
		if s.Name().Equal(l) {
			ns := *s
			ns.index = df.index
			return &ns, nil
		}
	}
	return nil, errors.Newf(codes.NotFound, "column %s does not exist", l)
}

// ColAt returns the i'th column bound to the frame's index.
func (df *DataFrame) ColAt(i int) *Series {
	ns := *df.series[i]
	ns.index = df.index
	return &ns
}

// Cols returns a new frame narrowed to the given column labels, sharing
// the row index.
func (df *DataFrame) Cols(labels ...interface{}) (*DataFrame, error) {
	series := make([]*Series, 0, len(labels))
	for _, label := range labels {
		s, err := df.Col(label)
		if err != nil {
			return nil, err
		}
		ns := *s
		series = append(series, &ns)
	}
	return &DataFrame{series: series, index: df.index}, nil
}

// Select returns a new frame containing the given rows in order.
func (df *DataFrame) Select(rows []int) *DataFrame {
	series := make([]*Series, len(df.series))
	for i, s := range df.series {
		series[i] = s.Select(rows)
	}
	return &DataFrame{
		series: series,
		index:  df.index.Select(rows),
	}
}

// SortIndex returns the frame sorted by its row index.
func (df *DataFrame) SortIndex() *DataFrame {
	return df.Select(df.index.sortOrder())
}

// SortValues returns the frame sorted by the given column, nulls first.
func (df *DataFrame) SortValues(label interface{}) (*DataFrame, error) {
	s, err := df.Col(label)
	if err != nil {
		return nil, err
	}
	rows := sortRowsBy(df.Len(), func(a, b int) int {
		return s.Value(a).Compare(s.Value(b))
	})
	return df.Select(rows), nil
}

// ResetIndex returns the frame with the default range index.
func (df *DataFrame) ResetIndex() *DataFrame {
	ndf := *df
	ndf.index = NewRangeIndex(df.Len())
	return &ndf
}

// SetIndex moves the given columns into the row index, one index level
// per column.
func (df *DataFrame) SetIndex(labels ...interface{}) (*DataFrame, error) {
	names := make([]Label, 0, len(labels))
	levels := make([][]values.Value, 0, len(labels))
	keep := make([]*Series, 0, len(df.series))

	moved := make(map[string]bool, len(labels))
	for _, label := range labels {
		s, err := df.Col(label)
		if err != nil {
			return nil, err
		}
		names = append(names, s.Name())
		levels = append(levels, s.Values())
		moved[s.Name().Key()] = true
	}
	for _, s := range df.series {
		if !moved[s.Name().Key()] {
			keep = append(keep, s)
		}
	}
	return &DataFrame{
		series: keep,
		index:  NewMultiIndex(names, levels),
	}, nil
}

// Equal reports whether two frames have the same columns, index and
// values.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df.NCols() != other.NCols() || !df.index.Equal(other.index) {
		return false
	}
	for i := range df.series {
		a, b := *df.series[i], *other.series[i]
		a.index, b.index = df.index, other.index
		if !a.Equal(&b) {
			return false
		}
	}
	return true
}

// String renders the frame for debugging.
func (df *DataFrame) String() string {
	var b strings.Builder
	b.WriteString("frame[")
	for i, s := range df.series {
		if i != 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s <%v>", s.Name(), s.Type())
	}
	b.WriteString("]\n")
	for i := 0; i < df.Len(); i++ {
		fmt.Fprintf(&b, "%v", df.index.Row(i))
		for _, s := range df.series {
			fmt.Fprintf(&b, "\t%v", s.Value(i))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// asLabel coerces a string or Label into a Label.
func asLabel(label interface{}) (Label, error) {
	switch label := label.(type) {
	case string:
		return L(label), nil
	case Label:
		return label, nil
	default:
		return nil, errors.Newf(codes.FailedPrecondition, "invalid column label of type %T", label)
	}
}

// sortRowsBy returns row positions 0..n-1 stably ordered by cmp.
func sortRowsBy(n int, cmp func(a, b int) int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return cmp(rows[a], rows[b]) < 0
	})
	return rows
}
