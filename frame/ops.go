package frame

import (
	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/execute"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// aggOp describes one reduction: the result type it produces for an
// input column type (TInvalid when the column cannot participate) and
// the aggregator factory.
type aggOp struct {
	name       string
	resultType func(keel.ColType) keel.ColType
	maker      func(keel.ColType) func() (execute.Aggregator, error)
}

func sumOp() aggOp {
	return aggOp{
		name:       "sum",
		resultType: execute.SumResultType,
		maker: func(t keel.ColType) func() (execute.Aggregator, error) {
			return func() (execute.Aggregator, error) { return execute.NewSum(t) }
		},
	}
}

func countOp() aggOp {
	return aggOp{
		name:       "count",
		resultType: func(keel.ColType) keel.ColType { return keel.TInt },
		maker: func(keel.ColType) func() (execute.Aggregator, error) {
			return execute.NewCount
		},
	}
}

func momentOp(name string, maker func(keel.ColType) (execute.Aggregator, error)) aggOp {
	return aggOp{
		name: name,
		resultType: func(t keel.ColType) keel.ColType {
			if !t.Numeric() && t != keel.TBool {
				return keel.TInvalid
			}
			return keel.TFloat
		},
		maker: func(t keel.ColType) func() (execute.Aggregator, error) {
			return func() (execute.Aggregator, error) { return maker(t) }
		},
	}
}

func nuniqueOp(dropNA bool) aggOp {
	return aggOp{
		name:       "nunique",
		resultType: func(keel.ColType) keel.ColType { return keel.TInt },
		maker: func(keel.ColType) func() (execute.Aggregator, error) {
			return execute.NewNUnique(dropNA)
		},
	}
}

func truthOp(name string, factory func() (execute.Aggregator, error)) aggOp {
	return aggOp{
		name: name,
		resultType: func(t keel.ColType) keel.ColType {
			if t == keel.TTime {
				return keel.TInvalid
			}
			return keel.TBool
		},
		maker: func(keel.ColType) func() (execute.Aggregator, error) {
			return factory
		},
	}
}

func extremumOp(name string, min bool) aggOp {
	return aggOp{
		name:       name,
		resultType: func(t keel.ColType) keel.ColType { return t },
		maker: func(t keel.ColType) func() (execute.Aggregator, error) {
			return func() (execute.Aggregator, error) { return execute.NewExtremum(t, min) }
		},
	}
}

// Sum sums every grouped column. Columns that cannot be summed are
// dropped unless they were explicitly projected.
func (g *DataFrameGroupBy) Sum() (*DataFrame, error) {
	return g.aggregate(sumOp())
}

// Count counts the non-null values of every grouped column.
func (g *DataFrameGroupBy) Count() (*DataFrame, error) {
	return g.aggregate(countOp())
}

// Mean computes the mean of every grouped numeric or boolean column.
func (g *DataFrameGroupBy) Mean() (*DataFrame, error) {
	return g.aggregate(momentOp("mean", execute.NewMean))
}

// Std computes the sample standard deviation of every grouped numeric
// or boolean column.
func (g *DataFrameGroupBy) Std() (*DataFrame, error) {
	return g.aggregate(momentOp("std", execute.NewStd))
}

// Min computes the minimum of every grouped column.
func (g *DataFrameGroupBy) Min() (*DataFrame, error) {
	return g.aggregate(extremumOp("min", true))
}

// Max computes the maximum of every grouped column.
func (g *DataFrameGroupBy) Max() (*DataFrame, error) {
	return g.aggregate(extremumOp("max", false))
}

// NUnique counts the distinct values of every grouped column. With
// dropNA unset, a null counts as one distinct value.
func (g *DataFrameGroupBy) NUnique(dropNA bool) (*DataFrame, error) {
	return g.aggregate(nuniqueOp(dropNA))
}

// All reports per group whether every value of each column is truthy.
// With skipNA set, nulls are ignored; otherwise a null counts as falsy.
func (g *DataFrameGroupBy) All(skipNA bool) (*DataFrame, error) {
	return g.aggregate(truthOp("all", execute.NewAll(skipNA)))
}

// Any reports per group whether any value of each column is truthy.
// Nulls never count as truthy.
func (g *DataFrameGroupBy) Any() (*DataFrame, error) {
	return g.aggregate(truthOp("any", execute.NewAny()))
}

// Size returns the number of rows in each group, including null
// values. The result is an unnamed series indexed by the group keys.
func (g *DataFrameGroupBy) Size() (*Series, error) {
	grouping, err := g.run("size")
	if err != nil {
		return nil, err
	}
	return sizeSeries(g.keys, grouping)
}

func (g *DataFrameGroupBy) aggregate(op aggOp) (*DataFrame, error) {
	grouping, err := g.run(op.name)
	if err != nil {
		return nil, err
	}
	targets, err := g.targetColumns()
	if err != nil {
		return nil, err
	}

	series := make([]*Series, 0, len(targets))
	for _, s := range targets {
		rt := op.resultType(s.Type())
		if rt == keel.TInvalid {
			if !g.selSet {
				// A frame-wide reduction drops columns it does
				// not apply to.
				continue
			}
			return nil, errors.Newf(codes.FailedPrecondition, "cannot apply %s to column %s of type %v", op.name, s.Name(), s.Type())
		}
		vs, err := execute.AggregateColumn(grouping, s.Data(), s.Type(), op.maker(s.Type()), execute.DefaultChunkSize)
		if err != nil {
			return nil, err
		}
		ns, err := NewSeries(s.Name(), rt, vs)
		if err != nil {
			return nil, err
		}
		series = append(series, ns)
	}
	return assembleAggregated(g.keys, g.opts, grouping, series)
}

// assembleAggregated produces the result frame of a reduction: keys as
// the index with as_index, keys as leading columns otherwise.
func assembleAggregated(keys []*keyColumn, opts groupOptions, grouping *execute.Grouping, aggregated []*Series) (*DataFrame, error) {
	if opts.asIndex {
		df, err := New(aggregated...)
		if err != nil {
			return nil, err
		}
		return df.WithIndex(keyIndex(keys, grouping))
	}
	lead, err := keySeries(keys, grouping)
	if err != nil {
		return nil, err
	}
	return New(append(lead, aggregated...)...)
}

func sizeSeries(keys []*keyColumn, grouping *execute.Grouping) (*Series, error) {
	vs := make([]values.Value, len(grouping.Groups))
	for i, grp := range grouping.Groups {
		vs[i] = values.NewInt(int64(len(grp.Rows)))
	}
	s, err := NewSeries(nil, keel.TInt, vs)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(keyIndex(keys, grouping))
}

// Sum sums the grouped series.
func (g *SeriesGroupBy) Sum() (*Series, error) {
	return g.aggregate(sumOp())
}

// Count counts the non-null values of the grouped series.
func (g *SeriesGroupBy) Count() (*Series, error) {
	return g.aggregate(countOp())
}

// Mean computes the per-group mean of the grouped series.
func (g *SeriesGroupBy) Mean() (*Series, error) {
	return g.aggregate(momentOp("mean", execute.NewMean))
}

// Std computes the per-group sample standard deviation of the grouped
// series.
func (g *SeriesGroupBy) Std() (*Series, error) {
	return g.aggregate(momentOp("std", execute.NewStd))
}

// Min computes the per-group minimum of the grouped series.
func (g *SeriesGroupBy) Min() (*Series, error) {
	return g.aggregate(extremumOp("min", true))
}

// Max computes the per-group maximum of the grouped series.
func (g *SeriesGroupBy) Max() (*Series, error) {
	return g.aggregate(extremumOp("max", false))
}

// NUnique counts the distinct values of the grouped series per group.
func (g *SeriesGroupBy) NUnique(dropNA bool) (*Series, error) {
	return g.aggregate(nuniqueOp(dropNA))
}

// All reports per group whether every value is truthy.
func (g *SeriesGroupBy) All(skipNA bool) (*Series, error) {
	return g.aggregate(truthOp("all", execute.NewAll(skipNA)))
}

// Any reports per group whether any value is truthy.
func (g *SeriesGroupBy) Any() (*Series, error) {
	return g.aggregate(truthOp("any", execute.NewAny()))
}

// Size returns the number of rows in each group.
func (g *SeriesGroupBy) Size() (*Series, error) {
	grouping, err := g.run("size")
	if err != nil {
		return nil, err
	}
	s, err := sizeSeries(g.keys, grouping)
	if err != nil {
		return nil, err
	}
	return s.Rename(g.s.Name()), nil
}

func (g *SeriesGroupBy) aggregate(op aggOp) (*Series, error) {
	grouping, err := g.run(op.name)
	if err != nil {
		return nil, err
	}
	rt := op.resultType(g.s.Type())
	if rt == keel.TInvalid {
		return nil, errors.Newf(codes.FailedPrecondition, "cannot apply %s to a series of type %v", op.name, g.s.Type())
	}
	vs, err := execute.AggregateColumn(grouping, g.s.Data(), g.s.Type(), op.maker(g.s.Type()), execute.DefaultChunkSize)
	if err != nil {
		return nil, err
	}
	s, err := NewSeries(g.s.Name(), rt, vs)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(keyIndex(g.keys, grouping))
}
