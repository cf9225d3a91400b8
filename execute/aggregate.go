package execute

import (
	"github.com/apache/arrow/go/arrow/array"
	"gonum.org/v1/gonum/stat"

	"github.com/keeldata/keel"
	keelarrow "github.com/keeldata/keel/arrow"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// Aggregator folds the values of one column for one group. Aggregate
// may be called many times, once per chunk of rows, before Compute
// produces the final value. The zero state of an aggregator is the
// identity so partial states merge by continued folding.
type Aggregator interface {
	Aggregate(vs array.Interface, typ keel.ColType, rows []int) error
	Compute() (values.Value, error)
}

// AggregateColumn runs one aggregator per group over the given column
// and returns the per-group results in group order. Rows are fed to the
// aggregator in chunks of chunkSize.
func AggregateColumn(grouping *Grouping, vs array.Interface, typ keel.ColType, newAgg func() (Aggregator, error), chunkSize int) ([]values.Value, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	out := make([]values.Value, 0, len(grouping.Groups))
	for _, grp := range grouping.Groups {
		agg, err := newAgg()
		if err != nil {
			return nil, err
		}
		for start := 0; start < len(grp.Rows); start += chunkSize {
			end := start + chunkSize
			if end > len(grp.Rows) {
				end = len(grp.Rows)
			}
			if err := agg.Aggregate(vs, typ, grp.Rows[start:end]); err != nil {
				return nil, err
			}
		}
		v, err := agg.Compute()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// SumResultType returns the column type a sum over the given type
// produces, or TInvalid when the type cannot be summed.
func SumResultType(t keel.ColType) keel.ColType {
	switch t {
	case keel.TInt, keel.TBool:
		return keel.TInt
	case keel.TUInt:
		return keel.TUInt
	case keel.TFloat:
		return keel.TFloat
	default:
		return keel.TInvalid
	}
}

type sumAggregator struct {
	typ keel.ColType
	i   int64
	u   uint64
	f   float64
}

// NewSum returns an aggregator summing non-null values. Boolean values
// sum as the count of true values. Nulls are skipped so the sum over an
// all-null group is zero.
func NewSum(typ keel.ColType) (Aggregator, error) {
	if SumResultType(typ) == keel.TInvalid {
		return nil, errors.Newf(codes.FailedPrecondition, "cannot sum column of type %v", typ)
	}
	return &sumAggregator{typ: typ}, nil
}

func (a *sumAggregator) Aggregate(vs array.Interface, typ keel.ColType, rows []int) error {
	switch vs := vs.(type) {
	case *array.Int64:
		for _, i := range rows {
			if !vs.IsNull(i) {
				a.i += vs.Value(i)
			}
		}
	case *array.Uint64:
		for _, i := range rows {
			if !vs.IsNull(i) {
				a.u += vs.Value(i)
			}
		}
	case *array.Float64:
		for _, i := range rows {
			if !vs.IsNull(i) {
				a.f += vs.Value(i)
			}
		}
	case *array.Boolean:
		for _, i := range rows {
			if !vs.IsNull(i) && vs.Value(i) {
				a.i++
			}
		}
	default:
		return errors.Newf(codes.FailedPrecondition, "cannot sum column of type %v", typ)
	}
	return nil
}

func (a *sumAggregator) Compute() (values.Value, error) {
	switch SumResultType(a.typ) {
	case keel.TUInt:
		return values.NewUInt(a.u), nil
	case keel.TFloat:
		return values.NewFloat(a.f), nil
	default:
		return values.NewInt(a.i), nil
	}
}

type countAggregator struct {
	n int64
}

// NewCount returns an aggregator counting non-null values.
func NewCount() (Aggregator, error) {
	return &countAggregator{}, nil
}

func (a *countAggregator) Aggregate(vs array.Interface, typ keel.ColType, rows []int) error {
	for _, i := range rows {
		if !vs.IsNull(i) {
			a.n++
		}
	}
	return nil
}

func (a *countAggregator) Compute() (values.Value, error) {
	return values.NewInt(a.n), nil
}

type momentAggregator struct {
	std bool
	xs  []float64
}

// NewMean returns an aggregator computing the mean of the non-null
// values of a numeric or boolean column.
func NewMean(typ keel.ColType) (Aggregator, error) {
	return newMomentAggregator(typ, false)
}

// NewStd returns an aggregator computing the sample standard deviation
// of the non-null values of a numeric or boolean column.
func NewStd(typ keel.ColType) (Aggregator, error) {
	return newMomentAggregator(typ, true)
}

func newMomentAggregator(typ keel.ColType, std bool) (Aggregator, error) {
	if !typ.Numeric() && typ != keel.TBool {
		return nil, errors.Newf(codes.FailedPrecondition, "cannot compute moments for column of type %v", typ)
	}
	return &momentAggregator{std: std}, nil
}

func (a *momentAggregator) Aggregate(vs array.Interface, typ keel.ColType, rows []int) error {
	for _, i := range rows {
		if vs.IsNull(i) {
			continue
		}
		switch vs := vs.(type) {
		case *array.Int64:
			a.xs = append(a.xs, float64(vs.Value(i)))
		case *array.Uint64:
			a.xs = append(a.xs, float64(vs.Value(i)))
		case *array.Float64:
			a.xs = append(a.xs, vs.Value(i))
		case *array.Boolean:
			if vs.Value(i) {
				a.xs = append(a.xs, 1)
			} else {
				a.xs = append(a.xs, 0)
			}
		default:
			return errors.Newf(codes.FailedPrecondition, "cannot compute moments for column of type %v", typ)
		}
	}
	return nil
}

func (a *momentAggregator) Compute() (values.Value, error) {
	if len(a.xs) == 0 {
		return values.NewNull(values.TFloat), nil
	}
	if a.std {
		if len(a.xs) < 2 {
			return values.NewNull(values.TFloat), nil
		}
		return values.NewFloat(stat.StdDev(a.xs, nil)), nil
	}
	return values.NewFloat(stat.Mean(a.xs, nil)), nil
}

type nuniqueAggregator struct {
	dropNA  bool
	hasNull bool
	seen    map[values.Value]struct{}
}

// NewNUnique returns an aggregator counting distinct values. When
// dropNA is set, nulls do not count as a distinct value.
func NewNUnique(dropNA bool) func() (Aggregator, error) {
	return func() (Aggregator, error) {
		return &nuniqueAggregator{dropNA: dropNA, seen: make(map[values.Value]struct{})}, nil
	}
}

func (a *nuniqueAggregator) Aggregate(vs array.Interface, typ keel.ColType, rows []int) error {
	for _, i := range rows {
		v := keelarrow.Value(vs, typ, i)
		if v.IsNull() {
			a.hasNull = true
			continue
		}
		a.seen[v] = struct{}{}
	}
	return nil
}

func (a *nuniqueAggregator) Compute() (values.Value, error) {
	n := int64(len(a.seen))
	if a.hasNull && !a.dropNA {
		n++
	}
	return values.NewInt(n), nil
}

type extremumAggregator struct {
	min  bool
	typ  keel.ColType
	best values.Value
	set  bool
}

// NewExtremum returns an aggregator computing the minimum or maximum
// non-null value. An all-null group yields null.
func NewExtremum(typ keel.ColType, min bool) (Aggregator, error) {
	return &extremumAggregator{min: min, typ: typ}, nil
}

func (a *extremumAggregator) Aggregate(vs array.Interface, typ keel.ColType, rows []int) error {
	for _, i := range rows {
		if vs.IsNull(i) {
			continue
		}
		v := keelarrow.Value(vs, typ, i)
		if !a.set {
			a.best, a.set = v, true
			continue
		}
		if c := v.Compare(a.best); (a.min && c < 0) || (!a.min && c > 0) {
			a.best = v
		}
	}
	return nil
}

func (a *extremumAggregator) Compute() (values.Value, error) {
	if !a.set {
		return nullValue(a.typ), nil
	}
	return a.best, nil
}

type truthAggregator struct {
	all    bool
	skipNA bool
	result bool
}

// NewAll returns an aggregator reporting whether every value in the
// group is truthy. With skipNA unset, a null value counts as falsy.
func NewAll(skipNA bool) func() (Aggregator, error) {
	return func() (Aggregator, error) {
		return &truthAggregator{all: true, skipNA: skipNA, result: true}, nil
	}
}

// NewAny returns an aggregator reporting whether any value in the group
// is truthy. Nulls are never truthy.
func NewAny() func() (Aggregator, error) {
	return func() (Aggregator, error) {
		return &truthAggregator{}, nil
	}
}

func (a *truthAggregator) Aggregate(vs array.Interface, typ keel.ColType, rows []int) error {
	for _, i := range rows {
		if vs.IsNull(i) {
			if a.all && !a.skipNA {
				a.result = false
			}
			continue
		}
		truthy, err := isTruthy(vs, typ, i)
		if err != nil {
			return err
		}
		if a.all {
			a.result = a.result && truthy
		} else {
			a.result = a.result || truthy
		}
	}
	return nil
}

func (a *truthAggregator) Compute() (values.Value, error) {
	return values.NewBool(a.result), nil
}

func isTruthy(vs array.Interface, typ keel.ColType, i int) (bool, error) {
	switch vs := vs.(type) {
	case *array.Boolean:
		return vs.Value(i), nil
	case *array.Int64:
		return vs.Value(i) != 0, nil
	case *array.Uint64:
		return vs.Value(i) != 0, nil
	case *array.Float64:
		return vs.Value(i) != 0, nil
	case *array.String:
		return vs.Value(i) != "", nil
	default:
		return false, errors.Newf(codes.FailedPrecondition, "no truth value for column of type %v", typ)
	}
}
