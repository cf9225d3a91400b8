package frame

import (
	"github.com/keeldata/keel"
	"github.com/keeldata/keel/execute"
	"github.com/keeldata/keel/values"
)

// Shift moves every grouped column by periods rows within each group.
// The result keeps the original row index; vacated positions and rows
// belonging to no group are null.
func (g *DataFrameGroupBy) Shift(periods int) (*DataFrame, error) {
	return g.transform("shift", func(s *Series, grouping *execute.Grouping) (keel.ColType, []values.Value, error) {
		return s.Type(), execute.Shift(grouping, s.Data(), s.Type(), periods, s.Len()), nil
	})
}

// Diff computes the difference to the value periods rows earlier within
// each group for every numeric grouped column. Columns that cannot be
// differenced are dropped unless they were explicitly projected.
func (g *DataFrameGroupBy) Diff(periods int) (*DataFrame, error) {
	return g.transform("diff", func(s *Series, grouping *execute.Grouping) (keel.ColType, []values.Value, error) {
		if execute.DiffResultType(s.Type()) == keel.TInvalid && !g.selSet {
			return keel.TInvalid, nil, nil
		}
		vs, err := execute.Diff(grouping, s.Data(), s.Type(), periods, s.Len())
		if err != nil {
			return keel.TInvalid, nil, err
		}
		return execute.DiffResultType(s.Type()), vs, nil
	})
}

// Rank computes the ascending average rank of every grouped numeric
// column within its group.
func (g *DataFrameGroupBy) Rank() (*DataFrame, error) {
	return g.transform("rank", func(s *Series, grouping *execute.Grouping) (keel.ColType, []values.Value, error) {
		return keel.TFloat, execute.Rank(grouping, s.Data(), s.Type(), s.Len()), nil
	})
}

func (g *DataFrameGroupBy) transform(op string, fn func(*Series, *execute.Grouping) (keel.ColType, []values.Value, error)) (*DataFrame, error) {
	grouping, err := g.run(op)
	if err != nil {
		return nil, err
	}
	targets, err := g.targetColumns()
	if err != nil {
		return nil, err
	}
	series := make([]*Series, 0, len(targets))
	for _, s := range targets {
		rt, vs, err := fn(s, grouping)
		if err != nil {
			return nil, err
		}
		if rt == keel.TInvalid {
			// The column does not participate in this transform.
			continue
		}
		ns, err := NewSeries(s.Name(), rt, vs)
		if err != nil {
			return nil, err
		}
		series = append(series, ns)
	}
	df, err := New(series...)
	if err != nil {
		return nil, err
	}
	return df.WithIndex(g.df.Index())
}

// Shift moves the grouped series by periods rows within each group.
func (g *SeriesGroupBy) Shift(periods int) (*Series, error) {
	return g.transform("shift", func(grouping *execute.Grouping) (keel.ColType, []values.Value, error) {
		return g.s.Type(), execute.Shift(grouping, g.s.Data(), g.s.Type(), periods, g.s.Len()), nil
	})
}

// Diff computes per-group differences of the grouped series.
func (g *SeriesGroupBy) Diff(periods int) (*Series, error) {
	return g.transform("diff", func(grouping *execute.Grouping) (keel.ColType, []values.Value, error) {
		vs, err := execute.Diff(grouping, g.s.Data(), g.s.Type(), periods, g.s.Len())
		if err != nil {
			return keel.TInvalid, nil, err
		}
		return execute.DiffResultType(g.s.Type()), vs, nil
	})
}

// Rank computes the ascending average rank of the grouped series within
// each group.
func (g *SeriesGroupBy) Rank() (*Series, error) {
	return g.transform("rank", func(grouping *execute.Grouping) (keel.ColType, []values.Value, error) {
		return keel.TFloat, execute.Rank(grouping, g.s.Data(), g.s.Type(), g.s.Len()), nil
	})
}

func (g *SeriesGroupBy) transform(op string, fn func(*execute.Grouping) (keel.ColType, []values.Value, error)) (*Series, error) {
	grouping, err := g.run(op)
	if err != nil {
		return nil, err
	}
	rt, vs, err := fn(grouping)
	if err != nil {
		return nil, err
	}
	s, err := NewSeries(g.s.Name(), rt, vs)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(g.s.Index())
}
