package frame

import (
	"sort"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/execute"
	"github.com/keeldata/keel/internal/errors"
)

// aggOpByName resolves the aggregation functions Agg dispatches on.
func aggOpByName(name string) (aggOp, error) {
	switch name {
	case "sum":
		return sumOp(), nil
	case "count":
		return countOp(), nil
	case "mean":
		return momentOp("mean", execute.NewMean), nil
	case "std":
		return momentOp("std", execute.NewStd), nil
	case "min":
		return extremumOp("min", true), nil
	case "max":
		return extremumOp("max", false), nil
	case "nunique":
		return nuniqueOp(true), nil
	case "all":
		return truthOp("all", execute.NewAll(true)), nil
	case "any":
		return truthOp("any", execute.NewAny()), nil
	default:
		return aggOp{}, errors.Newf(codes.Invalid, "unknown aggregation function %q", name)
	}
}

// Agg applies a named aggregation function per column. Result columns
// follow the frame's column order.
func (g *DataFrameGroupBy) Agg(spec map[string]string) (*DataFrame, error) {
	if len(spec) == 0 {
		return nil, errors.New(codes.Invalid, "no aggregation functions given")
	}
	grouping, err := g.run("agg")
	if err != nil {
		return nil, err
	}

	series := make([]*Series, 0, len(spec))
	for i := 0; i < g.df.NCols(); i++ {
		col := g.df.ColAt(i)
		name, ok := spec[col.Name().String()]
		if !ok {
			continue
		}
		ns, err := g.aggColumn(grouping, col, col.Name(), name)
		if err != nil {
			return nil, err
		}
		series = append(series, ns)
	}
	if len(series) != len(spec) {
		for label := range spec {
			if !g.df.HasCol(L(label)) {
				return nil, errors.Newf(codes.NotFound, "column %s does not exist", label)
			}
		}
	}
	return assembleAggregated(g.keys, g.opts, grouping, series)
}

// ColumnAgg names a source column and the aggregation applied to it,
// used by AggRelabel.
type ColumnAgg struct {
	Column string
	Func   string
}

// IsMultiAggWithRelabel reports whether every entry of the keyword
// specification is a column/function pair, which selects the relabeling
// form of Agg. A specification of plain function names selects the
// ordinary form.
func IsMultiAggWithRelabel(spec map[string]interface{}) bool {
	if len(spec) == 0 {
		return false
	}
	for _, v := range spec {
		if _, ok := v.(ColumnAgg); !ok {
			return false
		}
	}
	return true
}

// AggRelabel aggregates with output relabeling: each map key names a
// result column computed by applying the pair's function to the pair's
// source column. Result columns are ordered by their new name.
func (g *DataFrameGroupBy) AggRelabel(spec map[string]ColumnAgg) (*DataFrame, error) {
	if len(spec) == 0 {
		return nil, errors.New(codes.Invalid, "no aggregation functions given")
	}
	grouping, err := g.run("agg")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]*Series, 0, len(names))
	for _, name := range names {
		ca := spec[name]
		col, err := g.df.Col(ca.Column)
		if err != nil {
			return nil, err
		}
		ns, err := g.aggColumn(grouping, col, L(name), ca.Func)
		if err != nil {
			return nil, err
		}
		series = append(series, ns)
	}
	return assembleAggregated(g.keys, g.opts, grouping, series)
}

func (g *DataFrameGroupBy) aggColumn(grouping *execute.Grouping, col *Series, out Label, fn string) (*Series, error) {
	op, err := aggOpByName(fn)
	if err != nil {
		return nil, err
	}
	rt := op.resultType(col.Type())
	if rt == keel.TInvalid {
		return nil, errors.Newf(codes.FailedPrecondition, "cannot apply %s to column %s of type %v", op.name, col.Name(), col.Type())
	}
	vs, err := execute.AggregateColumn(grouping, col.Data(), col.Type(), op.maker(col.Type()), execute.DefaultChunkSize)
	if err != nil {
		return nil, err
	}
	return NewSeries(out, rt, vs)
}

// NUniqueAgg mirrors Agg's "nunique" with explicit null handling so the
// dropna variant is reachable through the aggregation dispatch as well.
func (g *DataFrameGroupBy) NUniqueAgg(label string, dropNA bool) (*DataFrame, error) {
	grouping, err := g.run("agg")
	if err != nil {
		return nil, err
	}
	col, err := g.df.Col(label)
	if err != nil {
		return nil, err
	}
	op := nuniqueOp(dropNA)
	vs, err := execute.AggregateColumn(grouping, col.Data(), col.Type(), op.maker(col.Type()), execute.DefaultChunkSize)
	if err != nil {
		return nil, err
	}
	ns, err := NewSeries(col.Name(), keel.TInt, vs)
	if err != nil {
		return nil, err
	}
	return assembleAggregated(g.keys, g.opts, grouping, []*Series{ns})
}
