package frame

import (
	"sort"

	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/memory"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/execute"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// GetGroup returns the rows of the group with the given key. A single
// grouping key takes a scalar, several grouping keys take a tuple
// ([]interface{}) of matching length.
func (g *DataFrameGroupBy) GetGroup(key interface{}) (*DataFrame, error) {
	grouping, err := g.run("get_group")
	if err != nil {
		return nil, err
	}
	grp, err := lookupGroup(g.keys, grouping, key)
	if err != nil {
		return nil, err
	}
	df := g.df
	if g.selSet {
		labels := make([]interface{}, len(g.sel))
		for i, l := range g.sel {
			labels[i] = l
		}
		if df, err = df.Cols(labels...); err != nil {
			return nil, err
		}
	}

	cols := make([]keel.ColMeta, df.NCols())
	vals := make([]array.Interface, df.NCols())
	for j := range cols {
		s := df.ColAt(j)
		cols[j] = keel.ColMeta{Label: s.Name().Key(), Type: s.Type()}
		vals[j] = s.Data()
	}
	buf, err := execute.GroupTable(grp, cols, vals, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	series := make([]*Series, len(buf.Values))
	for j := range buf.Values {
		series[j] = fromArray(df.ColAt(j).Name(), cols[j].Type, buf.Values[j])
	}
	return &DataFrame{series: series, index: df.index.Select(grp.Rows)}, nil
}

// GetGroup returns the values of the group with the given key.
func (g *SeriesGroupBy) GetGroup(key interface{}) (*Series, error) {
	grouping, err := g.run("get_group")
	if err != nil {
		return nil, err
	}
	grp, err := lookupGroup(g.keys, grouping, key)
	if err != nil {
		return nil, err
	}
	cols := []keel.ColMeta{{Label: g.s.Name().Key(), Type: g.s.Type()}}
	buf, err := execute.GroupTable(grp, cols, []array.Interface{g.s.Data()}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	return fromArray(g.s.Name(), g.s.Type(), buf.Values[0]).
		WithIndex(g.s.Index().Select(grp.Rows))
}

func lookupGroup(keys []*keyColumn, grouping *execute.Grouping, key interface{}) (*execute.Group, error) {
	parts, err := groupKeyParts(keys, key)
	if err != nil {
		return nil, err
	}
	cols, _ := engineKeys(keys)
	want := execute.NewGroupKey(cols, parts)
	grp := grouping.Lookup(want)
	if grp == nil {
		return nil, errors.Newf(codes.NotFound, "group %v does not exist", want)
	}
	return grp, nil
}

func groupKeyParts(keys []*keyColumn, key interface{}) ([]values.Value, error) {
	if tuple, ok := key.([]interface{}); ok {
		if len(keys) == 1 {
			return nil, errors.New(codes.FailedPrecondition, "group key must be a scalar when grouping by a single key")
		}
		if len(tuple) != len(keys) {
			return nil, errors.Newf(codes.Invalid, "group key of length %d does not match %d grouping keys", len(tuple), len(keys))
		}
		parts := make([]values.Value, len(tuple))
		for i, item := range tuple {
			v, err := asScalar(item)
			if err != nil {
				return nil, err
			}
			parts[i] = v
		}
		return parts, nil
	}
	if len(keys) > 1 {
		return nil, errors.Newf(codes.Invalid, "must supply a tuple to look up a group with %d grouping keys", len(keys))
	}
	v, err := asScalar(key)
	if err != nil {
		return nil, err
	}
	return []values.Value{v}, nil
}

func asScalar(v interface{}) (values.Value, error) {
	switch v := v.(type) {
	case values.Value:
		return v, nil
	case bool:
		return values.NewBool(v), nil
	case int:
		return values.NewInt(int64(v)), nil
	case int64:
		return values.NewInt(v), nil
	case uint64:
		return values.NewUInt(v), nil
	case float64:
		return values.NewFloat(v), nil
	case string:
		return values.NewString(v), nil
	case values.Time:
		return values.NewTime(v), nil
	default:
		return values.Null, errors.Newf(codes.FailedPrecondition, "group key part of type %T is not a scalar", v)
	}
}

// GroupedLists is the result of Unique: one list of values per group,
// indexed by the group keys.
type GroupedLists struct {
	index *Index
	lists [][]values.Value
}

// Len returns the number of groups.
func (gl *GroupedLists) Len() int {
	return len(gl.lists)
}

// Index returns the group key index.
func (gl *GroupedLists) Index() *Index {
	return gl.index
}

// List returns the values of the i'th group.
func (gl *GroupedLists) List(i int) []values.Value {
	return gl.lists[i]
}

// SortIndex returns the lists ordered by group key.
func (gl *GroupedLists) SortIndex() *GroupedLists {
	rows := gl.index.sortOrder()
	lists := make([][]values.Value, len(rows))
	for j, i := range rows {
		lists[j] = gl.lists[i]
	}
	return &GroupedLists{index: gl.index.Select(rows), lists: lists}
}

// Unique collects the distinct values of each group in first-seen
// order. Null is included when present.
func (g *SeriesGroupBy) Unique() (*GroupedLists, error) {
	grouping, err := g.run("unique")
	if err != nil {
		return nil, err
	}
	lists := make([][]values.Value, len(grouping.Groups))
	for i, grp := range grouping.Groups {
		seen := make(map[values.Value]struct{}, len(grp.Rows))
		seenNull := false
		var list []values.Value
		for _, row := range grp.Rows {
			v := g.s.Value(row)
			if v.IsNull() {
				if !seenNull {
					seenNull = true
					list = append(list, v)
				}
				continue
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				list = append(list, v)
			}
		}
		lists[i] = list
	}
	return &GroupedLists{index: keyIndex(g.keys, grouping), lists: lists}, nil
}

// ValueCounts counts the occurrences of each value within each group.
// The result is indexed by the group key levels plus the value itself.
// With sort set, rows are ordered by count within their group; with
// dropNA set, null values are not counted.
func (g *SeriesGroupBy) ValueCounts(sortCounts, ascending, dropNA bool) (*Series, error) {
	grouping, err := g.run("value_counts")
	if err != nil {
		return nil, err
	}

	type entry struct {
		group int
		value values.Value
		count int64
	}
	var entries []*entry
	for i, grp := range grouping.Groups {
		byValue := make(map[values.Value]*entry, len(grp.Rows))
		var nullEntry *entry
		for _, row := range grp.Rows {
			v := g.s.Value(row)
			if v.IsNull() {
				if dropNA {
					continue
				}
				if nullEntry == nil {
					nullEntry = &entry{group: i, value: v}
					entries = append(entries, nullEntry)
				}
				nullEntry.count++
				continue
			}
			e, ok := byValue[v]
			if !ok {
				e = &entry{group: i, value: v}
				byValue[v] = e
				entries = append(entries, e)
			}
			e.count++
		}
	}
	if sortCounts {
		sort.SliceStable(entries, func(a, b int) bool {
			if entries[a].group != entries[b].group {
				return entries[a].group < entries[b].group
			}
			if ascending {
				return entries[a].count < entries[b].count
			}
			return entries[a].count > entries[b].count
		})
	}

	names := make([]Label, 0, len(g.keys)+1)
	levels := make([][]values.Value, 0, len(g.keys)+1)
	for j, key := range g.keys {
		level := make([]values.Value, len(entries))
		for i, e := range entries {
			level[i] = grouping.Groups[e.group].Key.Value(j)
		}
		names = append(names, key.label)
		levels = append(levels, level)
	}
	valueLevel := make([]values.Value, len(entries))
	counts := make([]values.Value, len(entries))
	for i, e := range entries {
		valueLevel[i] = e.value
		counts[i] = values.NewInt(e.count)
	}
	names = append(names, g.s.Name())
	levels = append(levels, valueLevel)

	s, err := NewSeries(g.s.Name(), keel.TInt, counts)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(NewMultiIndex(names, levels))
}

// NSmallest returns the n smallest values of each group, indexed by the
// group key levels plus the original row labels.
func (g *SeriesGroupBy) NSmallest(n int) (*Series, error) {
	return g.selectExtremes("nsmallest", n, true)
}

// NLargest returns the n largest values of each group.
func (g *SeriesGroupBy) NLargest(n int) (*Series, error) {
	return g.selectExtremes("nlargest", n, false)
}

func (g *SeriesGroupBy) selectExtremes(op string, n int, smallest bool) (*Series, error) {
	if g.s.Index().NLevels() > 1 {
		return nil, errors.Newf(codes.Invalid, "%s does not support a multi-level index", op)
	}
	grouping, err := g.run(op)
	if err != nil {
		return nil, err
	}
	// Non-positive n selects nothing from every group.
	if n < 0 {
		n = 0
	}

	var picked []int
	groupOf := make([]int, 0)
	for i, grp := range grouping.Groups {
		rows := make([]int, 0, len(grp.Rows))
		for _, row := range grp.Rows {
			if !g.s.IsNull(row) {
				rows = append(rows, row)
			}
		}
		sort.SliceStable(rows, func(a, b int) bool {
			c := g.s.Value(rows[a]).Compare(g.s.Value(rows[b]))
			if smallest {
				return c < 0
			}
			return c > 0
		})
		if len(rows) > n {
			rows = rows[:n]
		}
		picked = append(picked, rows...)
		for range rows {
			groupOf = append(groupOf, i)
		}
	}

	names := make([]Label, 0, len(g.keys)+1)
	levels := make([][]values.Value, 0, len(g.keys)+1)
	for j, key := range g.keys {
		level := make([]values.Value, len(picked))
		for i := range picked {
			level[i] = grouping.Groups[groupOf[i]].Key.Value(j)
		}
		names = append(names, key.label)
		levels = append(levels, level)
	}
	orig := g.s.Index()
	level := make([]values.Value, len(picked))
	for i, row := range picked {
		level[i] = orig.Value(0, row)
	}
	names = append(names, orig.Name(0))
	levels = append(levels, level)

	vs := make([]values.Value, len(picked))
	for i, row := range picked {
		vs[i] = g.s.Value(row)
	}
	s, err := NewSeries(g.s.Name(), g.s.Type(), vs)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(NewMultiIndex(names, levels))
}
