package frame

import (
	"fmt"

	"github.com/apache/arrow/go/arrow/array"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/execute"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// Axis selects the direction of an operation.
type Axis int

const (
	// AxisIndex groups rows.
	AxisIndex Axis = iota
	// AxisColumns would group columns. It is not implemented.
	AxisColumns
)

type groupOptions struct {
	asIndex bool
	dropNA  bool
	axis    Axis
}

// GroupOption configures a group-by.
type GroupOption func(*groupOptions)

// AsIndex controls whether the group keys become the result index. The
// default is true; with false the keys stay regular columns.
func AsIndex(v bool) GroupOption {
	return func(o *groupOptions) { o.asIndex = v }
}

// DropNA controls whether rows with a null group key are dropped. The
// default is true.
func DropNA(v bool) GroupOption {
	return func(o *groupOptions) { o.dropNA = v }
}

// WithAxis selects the grouping axis.
func WithAxis(a Axis) GroupOption {
	return func(o *groupOptions) { o.axis = a }
}

func newGroupOptions(opts []GroupOption) groupOptions {
	o := groupOptions{asIndex: true, dropNA: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// keyColumn is one resolved grouping key.
type keyColumn struct {
	label     Label   // display label, possibly empty
	series    *Series // values aligned to the grouped rows
	fromFrame bool    // resolved from a column label of the frame
}

// DataFrameGroupBy is a view of a DataFrame with its rows partitioned
// by one or more keys, prior to an aggregation or transform call.
type DataFrameGroupBy struct {
	df   *DataFrame
	keys []*keyColumn
	opts groupOptions

	// sel narrows the columns operated on. selSet distinguishes an
	// explicit empty projection from no projection.
	sel    []Label
	selSet bool
}

// SeriesGroupBy is a view of a single Series partitioned by keys.
type SeriesGroupBy struct {
	s    *Series
	keys []*keyColumn
	opts groupOptions
}

// GroupBy partitions the frame's rows by the given key. The key may be
// a column label (string or Label), a Series aligned to the frame, or a
// list ([]interface{}, []string, []Label or []*Series) of those.
func (df *DataFrame) GroupBy(by interface{}, opts ...GroupOption) (*DataFrameGroupBy, error) {
	o := newGroupOptions(opts)
	if o.axis != AxisIndex {
		return nil, errors.New(codes.Unimplemented, "grouping along the columns axis is not implemented")
	}
	keys, err := df.resolveBy(by)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errors.New(codes.Invalid, "no group keys passed")
	}
	return &DataFrameGroupBy{df: df, keys: keys, opts: o}, nil
}

// GroupBy partitions the series by the given key. Unlike a frame
// group-by, the key must be a Series (or list of Series): a bare column
// label has no frame to resolve against.
func (s *Series) GroupBy(by interface{}, opts ...GroupOption) (*SeriesGroupBy, error) {
	o := newGroupOptions(opts)
	if o.axis != AxisIndex {
		return nil, errors.New(codes.Unimplemented, "grouping along the columns axis is not implemented")
	}
	if !o.asIndex {
		return nil, errors.New(codes.FailedPrecondition, "as_index=false only valid with a DataFrame group-by")
	}
	keys, err := s.resolveBy(by)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errors.New(codes.Invalid, "no group keys passed")
	}
	return &SeriesGroupBy{s: s, keys: keys, opts: o}, nil
}

func (df *DataFrame) resolveBy(by interface{}) ([]*keyColumn, error) {
	switch by := by.(type) {
	case string, Label:
		key, err := df.resolveKeyLabel(by)
		if err != nil {
			return nil, err
		}
		return []*keyColumn{key}, nil
	case *Series:
		key, err := df.resolveKeySeries(by)
		if err != nil {
			return nil, err
		}
		return []*keyColumn{key}, nil
	case *DataFrame:
		return nil, errors.New(codes.Invalid, "cannot group by a DataFrame")
	case []string:
		keys := make([]*keyColumn, 0, len(by))
		for _, label := range by {
			key, err := df.resolveKeyLabel(label)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		return keys, nil
	case []Label:
		keys := make([]*keyColumn, 0, len(by))
		for _, label := range by {
			key, err := df.resolveKeyLabel(label)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		return keys, nil
	case []*Series:
		keys := make([]*keyColumn, 0, len(by))
		for _, s := range by {
			key, err := df.resolveKeySeries(s)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		return keys, nil
	case []interface{}:
		keys := make([]*keyColumn, 0, len(by))
		for _, item := range by {
			switch item := item.(type) {
			case string, Label:
				key, err := df.resolveKeyLabel(item)
				if err != nil {
					return nil, err
				}
				keys = append(keys, key)
			case *Series:
				key, err := df.resolveKeySeries(item)
				if err != nil {
					return nil, err
				}
				keys = append(keys, key)
			case []string, []Label, []interface{}, []*Series:
				return nil, errors.Newf(codes.Invalid, "grouper for %T is not 1-dimensional", item)
			default:
				return nil, errors.Newf(codes.FailedPrecondition, "invalid grouper of type %T", item)
			}
		}
		return keys, nil
	default:
		return nil, errors.Newf(codes.FailedPrecondition, "invalid grouper of type %T", by)
	}
}

func (df *DataFrame) resolveKeyLabel(label interface{}) (*keyColumn, error) {
	s, err := df.Col(label)
	if err != nil {
		return nil, err
	}
	return &keyColumn{label: s.Name(), series: s, fromFrame: true}, nil
}

func (df *DataFrame) resolveKeySeries(s *Series) (*keyColumn, error) {
	if s.Len() != df.Len() {
		return nil, errors.Newf(codes.Invalid, "grouper of length %d does not fit a frame of length %d", s.Len(), df.Len())
	}
	return &keyColumn{label: s.Name(), series: s}, nil
}

func (s *Series) resolveBy(by interface{}) ([]*keyColumn, error) {
	switch by := by.(type) {
	case *Series:
		key, err := s.resolveKeySeries(by)
		if err != nil {
			return nil, err
		}
		return []*keyColumn{key}, nil
	case string, Label:
		// A label cannot be resolved without a frame.
		l, _ := asLabel(by)
		return nil, errors.Newf(codes.NotFound, "column %s does not exist", l)
	case *DataFrame:
		return nil, errors.New(codes.Invalid, "cannot group by a DataFrame")
	case []*Series:
		keys := make([]*keyColumn, 0, len(by))
		for _, g := range by {
			key, err := s.resolveKeySeries(g)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		return keys, nil
	case []interface{}:
		keys := make([]*keyColumn, 0, len(by))
		for _, item := range by {
			switch item := item.(type) {
			case *Series:
				key, err := s.resolveKeySeries(item)
				if err != nil {
					return nil, err
				}
				keys = append(keys, key)
			case string, Label:
				l, _ := asLabel(item)
				return nil, errors.Newf(codes.NotFound, "column %s does not exist", l)
			case *DataFrame:
				return nil, errors.New(codes.Invalid, "cannot group by a DataFrame")
			default:
				return nil, errors.Newf(codes.FailedPrecondition, "invalid grouper of type %T", item)
			}
		}
		return keys, nil
	default:
		return nil, errors.Newf(codes.FailedPrecondition, "invalid grouper of type %T", by)
	}
}

func (s *Series) resolveKeySeries(by *Series) (*keyColumn, error) {
	if by.Len() != s.Len() {
		return nil, errors.Newf(codes.Invalid, "grouper of length %d does not fit a series of length %d", by.Len(), s.Len())
	}
	return &keyColumn{label: by.Name(), series: by}, nil
}

// Col narrows the grouped view to a single column.
func (g *DataFrameGroupBy) Col(label interface{}) (*SeriesGroupBy, error) {
	if !g.opts.asIndex {
		return nil, errors.New(codes.Invalid, "cannot project columns of a group-by with as_index=false")
	}
	s, err := g.df.Col(label)
	if err != nil {
		return nil, err
	}
	return &SeriesGroupBy{s: s, keys: g.keys, opts: g.opts}, nil
}

// Cols narrows the grouped view to the given columns. An empty label
// list narrows to no columns, leaving only the group keys.
func (g *DataFrameGroupBy) Cols(labels ...interface{}) (*DataFrameGroupBy, error) {
	if !g.opts.asIndex {
		return nil, errors.New(codes.Invalid, "cannot project columns of a group-by with as_index=false")
	}
	sel := make([]Label, 0, len(labels))
	for _, label := range labels {
		s, err := g.df.Col(label)
		if err != nil {
			return nil, err
		}
		sel = append(sel, s.Name())
	}
	return &DataFrameGroupBy{
		df:     g.df,
		keys:   g.keys,
		opts:   g.opts,
		sel:    sel,
		selSet: true,
	}, nil
}

// engineKeys renders the resolved keys into engine column metadata and
// value arrays. Engine labels are made unique so unnamed or duplicated
// keys do not collide.
func engineKeys(keys []*keyColumn) ([]keel.ColMeta, []array.Interface) {
	cols := make([]keel.ColMeta, len(keys))
	vals := make([]array.Interface, len(keys))
	seen := make(map[string]bool, len(keys))
	for j, key := range keys {
		label := key.label.Key()
		if label == "" || seen[label] {
			label = fmt.Sprintf("%s\x00%d", label, j)
		}
		seen[label] = true
		cols[j] = keel.ColMeta{Label: label, Type: key.series.Type()}
		vals[j] = key.series.Data()
	}
	return cols, vals
}

func (g *DataFrameGroupBy) run(op string) (*execute.Grouping, error) {
	span, _ := execute.StartSpan(op)
	defer span.Finish()
	cols, vals := engineKeys(g.keys)
	return execute.GroupRows(cols, vals, g.df.Len(), g.opts.dropNA, execute.DefaultChunkSize), nil
}

func (g *SeriesGroupBy) run(op string) (*execute.Grouping, error) {
	span, _ := execute.StartSpan(op)
	defer span.Finish()
	cols, vals := engineKeys(g.keys)
	return execute.GroupRows(cols, vals, g.s.Len(), g.opts.dropNA, execute.DefaultChunkSize), nil
}

// keyIndex builds the result index of an aggregation: one level per
// group key, one row per group.
func keyIndex(keys []*keyColumn, grouping *execute.Grouping) *Index {
	names := make([]Label, len(keys))
	levels := make([][]values.Value, len(keys))
	for j, key := range keys {
		names[j] = key.label
		level := make([]values.Value, len(grouping.Groups))
		for i, grp := range grouping.Groups {
			level[i] = grp.Key.Value(j)
		}
		levels[j] = level
	}
	return NewMultiIndex(names, levels)
}

// keySeries builds the group keys as regular columns, one row per
// group, for as_index=false results.
func keySeries(keys []*keyColumn, grouping *execute.Grouping) ([]*Series, error) {
	out := make([]*Series, len(keys))
	for j, key := range keys {
		vs := make([]values.Value, len(grouping.Groups))
		for i, grp := range grouping.Groups {
			vs[i] = grp.Key.Value(j)
		}
		s, err := NewSeries(key.label, key.series.Type(), vs)
		if err != nil {
			return nil, err
		}
		out[j] = s
	}
	return out, nil
}

// targetColumns returns the columns an operation applies to: the
// projection when one was set, otherwise every column that is not a
// grouping key of the frame.
func (g *DataFrameGroupBy) targetColumns() ([]*Series, error) {
	if g.selSet {
		out := make([]*Series, 0, len(g.sel))
		for _, label := range g.sel {
			s, err := g.df.Col(label)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	out := make([]*Series, 0, g.df.NCols())
	for i := 0; i < g.df.NCols(); i++ {
		s := g.df.ColAt(i)
		excluded := false
		for _, key := range g.keys {
			if key.fromFrame && key.label.Equal(s.Name()) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, s)
		}
	}
	return out, nil
}
