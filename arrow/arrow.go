// Package arrow adapts keel column types to Apache Arrow builders and
// arrays.
package arrow

import (
	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/memory"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// NewBuilder constructs a new builder for the given column type.
func NewBuilder(t keel.ColType, mem memory.Allocator) array.Builder {
	switch t {
	case keel.TBool:
		return array.NewBooleanBuilder(mem)
	case keel.TInt, keel.TTime:
		return array.NewInt64Builder(mem)
	case keel.TUInt:
		return array.NewUint64Builder(mem)
	case keel.TFloat:
		return array.NewFloat64Builder(mem)
	case keel.TString:
		return array.NewStringBuilder(mem)
	default:
		panic(errors.Newf(codes.Internal, "no builder for column type %v", t))
	}
}

// AppendValue appends a value to the builder. The value must be null or
// of the type the builder was constructed for.
func AppendValue(b array.Builder, v values.Value) error {
	if v.IsNull() {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.BooleanBuilder:
		b.Append(v.Bool())
	case *array.Int64Builder:
		if v.Type() == values.TTime {
			b.Append(int64(v.Time()))
		} else {
			b.Append(v.Int())
		}
	case *array.Uint64Builder:
		b.Append(v.UInt())
	case *array.Float64Builder:
		b.Append(v.Float())
	case *array.StringBuilder:
		b.Append(v.Str())
	default:
		return errors.Newf(codes.Internal, "unsupported builder type %T", b)
	}
	return nil
}

// Value reads the i'th element of the array back as a dynamic value.
// The column type disambiguates int and time columns, which share a
// physical representation.
func Value(arr array.Interface, t keel.ColType, i int) values.Value {
	if arr.IsNull(i) {
		return nullOf(t)
	}
	switch arr := arr.(type) {
	case *array.Boolean:
		return values.NewBool(arr.Value(i))
	case *array.Int64:
		if t == keel.TTime {
			return values.NewTime(values.Time(arr.Value(i)))
		}
		return values.NewInt(arr.Value(i))
	case *array.Uint64:
		return values.NewUInt(arr.Value(i))
	case *array.Float64:
		return values.NewFloat(arr.Value(i))
	case *array.String:
		return values.NewString(arr.Value(i))
	default:
		panic(errors.Newf(codes.Internal, "unsupported array type %T", arr))
	}
}

func nullOf(t keel.ColType) values.Value {
	switch t {
	case keel.TBool:
		return values.NewNull(values.TBool)
	case keel.TInt:
		return values.NewNull(values.TInt)
	case keel.TUInt:
		return values.NewNull(values.TUInt)
	case keel.TFloat:
		return values.NewNull(values.TFloat)
	case keel.TString:
		return values.NewNull(values.TString)
	case keel.TTime:
		return values.NewNull(values.TTime)
	default:
		return values.Null
	}
}

// Slice returns a zero-copy slice of the array covering rows [i, j).
func Slice(arr array.Interface, i, j int) array.Interface {
	return array.NewSlice(arr, int64(i), int64(j))
}

// TableBuffer is an in-memory buffer of rows sharing a group key.
type TableBuffer struct {
	GroupKey keel.GroupKey
	Columns  []keel.ColMeta
	Values   []array.Interface
}

// Key returns the group key shared by every row of the buffer.
func (b *TableBuffer) Key() keel.GroupKey {
	return b.GroupKey
}

// Cols returns the column metadata.
func (b *TableBuffer) Cols() []keel.ColMeta {
	return b.Columns
}

// Len returns the number of rows.
func (b *TableBuffer) Len() int {
	if len(b.Values) == 0 {
		return 0
	}
	return b.Values[0].Len()
}

