package execute

import (
	"sort"

	"github.com/apache/arrow/go/arrow/array"

	"github.com/keeldata/keel"
	keelarrow "github.com/keeldata/keel/arrow"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// Shift returns the column with values moved by periods rows within
// each group. Vacated positions become null. The result is aligned to
// the original n rows; rows that belong to no group stay null.
func Shift(grouping *Grouping, vs array.Interface, typ keel.ColType, periods, n int) []values.Value {
	out := nullColumn(typ, n)
	for _, grp := range grouping.Groups {
		for k, row := range grp.Rows {
			src := k - periods
			if src < 0 || src >= len(grp.Rows) {
				continue
			}
			out[row] = keelarrow.Value(vs, typ, grp.Rows[src])
		}
	}
	return out
}

// DiffResultType returns the column type of a difference over the given
// type, or TInvalid when the type cannot be differenced.
func DiffResultType(t keel.ColType) keel.ColType {
	switch t {
	case keel.TInt, keel.TUInt:
		return keel.TInt
	case keel.TFloat:
		return keel.TFloat
	default:
		return keel.TInvalid
	}
}

// Diff returns the difference between each value and the value periods
// rows earlier within its group. The first periods rows of each group
// are null, as is any row whose operand is null.
func Diff(grouping *Grouping, vs array.Interface, typ keel.ColType, periods, n int) ([]values.Value, error) {
	rt := DiffResultType(typ)
	if rt == keel.TInvalid {
		return nil, errors.Newf(codes.FailedPrecondition, "cannot diff column of type %v", typ)
	}
	out := nullColumn(rt, n)
	for _, grp := range grouping.Groups {
		for k, row := range grp.Rows {
			src := k - periods
			if src < 0 || src >= len(grp.Rows) {
				continue
			}
			prev := grp.Rows[src]
			if vs.IsNull(row) || vs.IsNull(prev) {
				continue
			}
			switch vs := vs.(type) {
			case *array.Int64:
				out[row] = values.NewInt(vs.Value(row) - vs.Value(prev))
			case *array.Uint64:
				out[row] = values.NewInt(int64(vs.Value(row)) - int64(vs.Value(prev)))
			case *array.Float64:
				out[row] = values.NewFloat(vs.Value(row) - vs.Value(prev))
			}
		}
	}
	return out, nil
}

// Rank returns the ascending rank of each value within its group. Ties
// receive the average of the ranks they span and null values rank as
// null.
func Rank(grouping *Grouping, vs array.Interface, typ keel.ColType, n int) []values.Value {
	out := nullColumn(keel.TFloat, n)
	for _, grp := range grouping.Groups {
		rows := make([]int, 0, len(grp.Rows))
		for _, row := range grp.Rows {
			if !vs.IsNull(row) {
				rows = append(rows, row)
			}
		}
		sort.SliceStable(rows, func(i, j int) bool {
			a := keelarrow.Value(vs, typ, rows[i])
			b := keelarrow.Value(vs, typ, rows[j])
			return a.Compare(b) < 0
		})

		for i := 0; i < len(rows); {
			j := i + 1
			vi := keelarrow.Value(vs, typ, rows[i])
			for j < len(rows) && vi.Equal(keelarrow.Value(vs, typ, rows[j])) {
				j++
			}
			// Ranks are 1-based so the run [i, j) averages to the
			// midpoint of i+1 and j.
			rank := float64(i+1+j) / 2
			for k := i; k < j; k++ {
				out[rows[k]] = values.NewFloat(rank)
			}
			i = j
		}
	}
	return out
}

func nullValue(typ keel.ColType) values.Value {
	switch typ {
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

func nullColumn(typ keel.ColType, n int) []values.Value {
	null := nullValue(typ)
	out := make([]values.Value, n)
	for i := range out {
		out[i] = null
	}
	return out
}
