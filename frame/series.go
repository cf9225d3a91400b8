package frame

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/memory"

	"github.com/keeldata/keel"
	keelarrow "github.com/keeldata/keel/arrow"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// Series is a named, typed column backed by an Arrow array. A
// standalone series carries its own row index; a series inside a
// DataFrame shares the frame's index.
type Series struct {
	name  Label
	typ   keel.ColType
	data  array.Interface
	index *Index
}

// NewSeries constructs a series from dynamic values. Every value must
// be null or of the given column type.
func NewSeries(name Label, typ keel.ColType, vs []values.Value) (*Series, error) {
	b := keelarrow.NewBuilder(typ, memory.DefaultAllocator)
	for _, v := range vs {
		if err := keelarrow.AppendValue(b, v); err != nil {
			return nil, err
		}
	}
	data := b.NewArray()
	return &Series{
		name:  name,
		typ:   typ,
		data:  data,
		index: NewRangeIndex(data.Len()),
	}, nil
}

// Ints constructs an int series with no nulls.
func Ints(name string, vs ...int64) *Series {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	b.AppendValues(vs, nil)
	return fromArray(L(name), keel.TInt, b.NewArray())
}

// Floats constructs a float series with no nulls.
func Floats(name string, vs ...float64) *Series {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	b.AppendValues(vs, nil)
	return fromArray(L(name), keel.TFloat, b.NewArray())
}

// Strings constructs a string series with no nulls.
func Strings(name string, vs ...string) *Series {
	b := array.NewStringBuilder(memory.DefaultAllocator)
	b.AppendValues(vs, nil)
	return fromArray(L(name), keel.TString, b.NewArray())
}

// Bools constructs a boolean series with no nulls.
func Bools(name string, vs ...bool) *Series {
	b := array.NewBooleanBuilder(memory.DefaultAllocator)
	b.AppendValues(vs, nil)
	return fromArray(L(name), keel.TBool, b.NewArray())
}

func fromArray(name Label, typ keel.ColType, data array.Interface) *Series {
	return &Series{
		name:  name,
		typ:   typ,
		data:  data,
		index: NewRangeIndex(data.Len()),
	}
}

// Name returns the series name.
func (s *Series) Name() Label {
	return s.name
}

// Rename returns the series under a new name. Renaming to the empty
// label produces an unnamed series. The data is shared.
func (s *Series) Rename(name Label) *Series {
	ns := *s
	ns.name = name
	return &ns
}

// Type returns the column type.
func (s *Series) Type() keel.ColType {
	return s.typ
}

// Len returns the number of rows.
func (s *Series) Len() int {
	return s.data.Len()
}

// Value returns the value at row i.
func (s *Series) Value(i int) values.Value {
	return keelarrow.Value(s.data, s.typ, i)
}

// IsNull reports whether the value at row i is null.
func (s *Series) IsNull(i int) bool {
	return s.data.IsNull(i)
}

// Values returns all row values.
func (s *Series) Values() []values.Value {
	vs := make([]values.Value, s.Len())
	for i := range vs {
		vs[i] = s.Value(i)
	}
	return vs
}

// Data returns the backing Arrow array.
func (s *Series) Data() array.Interface {
	return s.data
}

// Index returns the row index.
func (s *Series) Index() *Index {
	return s.index
}

// WithIndex returns the series with the given row index.
func (s *Series) WithIndex(ix *Index) (*Series, error) {
	if ix.Len() != s.Len() {
		return nil, errors.Newf(codes.Invalid, "index of length %d does not fit a series of length %d", ix.Len(), s.Len())
	}
	ns := *s
	ns.index = ix
	return &ns, nil
}

// Select returns a new series containing the given rows in order.
func (s *Series) Select(rows []int) *Series {
	b := keelarrow.NewBuilder(s.typ, memory.DefaultAllocator)
	for _, i := range rows {
		_ = keelarrow.AppendValue(b, s.Value(i))
	}
	return &Series{
		name:  s.name,
		typ:   s.typ,
		data:  b.NewArray(),
		index: s.index.Select(rows),
	}
}

// SortIndex returns the series sorted by its row index.
func (s *Series) SortIndex() *Series {
	return s.Select(s.index.sortOrder())
}

// SortValues returns the series sorted by its values, nulls first.
func (s *Series) SortValues() *Series {
	rows := sortRowsBy(s.Len(), func(a, b int) int {
		return s.Value(a).Compare(s.Value(b))
	})
	return s.Select(rows)
}

// ResetIndex returns the series with the default range index.
func (s *Series) ResetIndex() *Series {
	ns := *s
	ns.index = NewRangeIndex(s.Len())
	return &ns
}

// FloorDiv returns a derived series with every value floor-divided by
// d. Nulls stay null and the name is kept. The series must be an int
// column.
func (s *Series) FloorDiv(d int64) (*Series, error) {
	if s.typ != keel.TInt {
		return nil, errors.Newf(codes.FailedPrecondition, "floor division needs an int column, got %v", s.typ)
	}
	return s.mapInt(func(v int64) int64 {
		q := v / d
		if (v%d != 0) && ((v < 0) != (d < 0)) {
			q--
		}
		return q
	})
}

// MulInt returns a derived series with every value multiplied by m.
func (s *Series) MulInt(m int64) (*Series, error) {
	if s.typ != keel.TInt {
		return nil, errors.Newf(codes.FailedPrecondition, "multiplication needs an int column, got %v", s.typ)
	}
	return s.mapInt(func(v int64) int64 { return v * m })
}

func (s *Series) mapInt(fn func(int64) int64) (*Series, error) {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	vs := s.data.(*array.Int64)
	for i := 0; i < vs.Len(); i++ {
		if vs.IsNull(i) {
			b.AppendNull()
		} else {
			b.Append(fn(vs.Value(i)))
		}
	}
	ns := *s
	ns.data = b.NewArray()
	return &ns, nil
}

// AddFloat returns a derived series with x added to every value. The
// series must be a float column.
func (s *Series) AddFloat(x float64) (*Series, error) {
	if s.typ != keel.TFloat {
		return nil, errors.Newf(codes.FailedPrecondition, "addition needs a float column, got %v", s.typ)
	}
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	vs := s.data.(*array.Float64)
	for i := 0; i < vs.Len(); i++ {
		if vs.IsNull(i) {
			b.AppendNull()
		} else {
			b.Append(vs.Value(i) + x)
		}
	}
	ns := *s
	ns.data = b.NewArray()
	return &ns, nil
}

// Equal reports whether two series have the same name, type, index and
// values.
func (s *Series) Equal(other *Series) bool {
	if !s.name.Equal(other.name) || s.typ != other.typ || s.Len() != other.Len() {
		return false
	}
	if !s.index.Equal(other.index) {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if !s.Value(i).Equal(other.Value(i)) {
			return false
		}
	}
	return true
}

// String renders the series for debugging.
func (s *Series) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "series %s <%v>\n", s.name, s.typ)
	for i := 0; i < s.Len(); i++ {
		fmt.Fprintf(&b, "%v\t%v\n", s.index.Row(i), s.Value(i))
	}
	return b.String()
}
