// Package reference implements group-by the simplest way that can be
// trusted: one pass over the rows, plain maps and slices, no columnar
// buffers and no chunking. The conformance suite uses it as the oracle
// the engine-backed API is compared against.
package reference

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// Input is the resolved form of a group-by: the source row labels, the
// aligned key columns and the columns operated on.
type Input struct {
	Index   *frame.Index
	Keys    []*frame.Series
	Targets []*frame.Series
	AsIndex bool
	DropNA  bool
}

type group struct {
	keyVals []values.Value
	rows    []int
}

// Grouped is the naive partitioning of the input rows.
type Grouped struct {
	in     Input
	n      int
	groups []*group
}

// New partitions the input rows by key, in first-seen order. Rows with
// a null key value are dropped when DropNA is set.
func New(in Input) *Grouped {
	n := in.Index.Len()
	g := &Grouped{in: in, n: n}
	seen := make(map[string]*group)
	for i := 0; i < n; i++ {
		keyVals := make([]values.Value, len(in.Keys))
		null := false
		for j, k := range in.Keys {
			keyVals[j] = k.Value(i)
			if keyVals[j].IsNull() {
				null = true
			}
		}
		if null && in.DropNA {
			continue
		}
		id := keyID(keyVals)
		grp, ok := seen[id]
		if !ok {
			grp = &group{keyVals: keyVals}
			seen[id] = grp
			g.groups = append(g.groups, grp)
		}
		grp.rows = append(grp.rows, i)
	}
	return g
}

func keyID(vals []values.Value) string {
	var b strings.Builder
	for _, v := range vals {
		fmt.Fprintf(&b, "%d\x1f", v.Type())
		if v.IsNull() {
			b.WriteString("n")
		} else {
			b.WriteString("v")
			b.WriteString(v.String())
		}
		b.WriteString("\x1e")
	}
	return b.String()
}

// NGroups returns the number of groups.
func (g *Grouped) NGroups() int {
	return len(g.groups)
}

func (g *Grouped) keyIndex() *frame.Index {
	names := make([]frame.Label, len(g.in.Keys))
	levels := make([][]values.Value, len(g.in.Keys))
	for j, k := range g.in.Keys {
		names[j] = k.Name()
		level := make([]values.Value, len(g.groups))
		for i, grp := range g.groups {
			level[i] = grp.keyVals[j]
		}
		levels[j] = level
	}
	return frame.NewMultiIndex(names, levels)
}

func (g *Grouped) keyColumns() ([]*frame.Series, error) {
	out := make([]*frame.Series, len(g.in.Keys))
	for j, k := range g.in.Keys {
		vs := make([]values.Value, len(g.groups))
		for i, grp := range g.groups {
			vs[i] = grp.keyVals[j]
		}
		s, err := frame.NewSeries(k.Name(), k.Type(), vs)
		if err != nil {
			return nil, err
		}
		out[j] = s
	}
	return out, nil
}

// reduce folds every group of every applicable target column.
func (g *Grouped) reduce(resultType func(keel.ColType) keel.ColType, fold func(*frame.Series, []int) values.Value) (*frame.DataFrame, error) {
	series := make([]*frame.Series, 0, len(g.in.Targets))
	for _, t := range g.in.Targets {
		rt := resultType(t.Type())
		if rt == keel.TInvalid {
			continue
		}
		vs := make([]values.Value, len(g.groups))
		for i, grp := range g.groups {
			vs[i] = fold(t, grp.rows)
		}
		s, err := frame.NewSeries(t.Name(), rt, vs)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	if g.in.AsIndex {
		df, err := frame.New(series...)
		if err != nil {
			return nil, err
		}
		return df.WithIndex(g.keyIndex())
	}
	lead, err := g.keyColumns()
	if err != nil {
		return nil, err
	}
	return frame.New(append(lead, series...)...)
}

// Sum sums the non-null values of every summable target column.
func (g *Grouped) Sum() (*frame.DataFrame, error) {
	return g.reduce(sumType, func(t *frame.Series, rows []int) values.Value {
		switch sumType(t.Type()) {
		case keel.TUInt:
			var sum uint64
			for _, i := range rows {
				if !t.IsNull(i) {
					sum += t.Value(i).UInt()
				}
			}
			return values.NewUInt(sum)
		case keel.TFloat:
			var sum float64
			for _, i := range rows {
				if !t.IsNull(i) {
					sum += t.Value(i).Float()
				}
			}
			return values.NewFloat(sum)
		default:
			var sum int64
			for _, i := range rows {
				if t.IsNull(i) {
					continue
				}
				if t.Type() == keel.TBool {
					if t.Value(i).Bool() {
						sum++
					}
				} else {
					sum += t.Value(i).Int()
				}
			}
			return values.NewInt(sum)
		}
	})
}

func sumType(t keel.ColType) keel.ColType {
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

// Count counts non-null values.
func (g *Grouped) Count() (*frame.DataFrame, error) {
	return g.reduce(func(keel.ColType) keel.ColType { return keel.TInt }, func(t *frame.Series, rows []int) values.Value {
		var n int64
		for _, i := range rows {
			if !t.IsNull(i) {
				n++
			}
		}
		return values.NewInt(n)
	})
}

func momentType(t keel.ColType) keel.ColType {
	if t.Numeric() || t == keel.TBool {
		return keel.TFloat
	}
	return keel.TInvalid
}

func numericAt(t *frame.Series, i int) float64 {
	switch t.Type() {
	case keel.TInt:
		return float64(t.Value(i).Int())
	case keel.TUInt:
		return float64(t.Value(i).UInt())
	case keel.TBool:
		if t.Value(i).Bool() {
			return 1
		}
		return 0
	default:
		return t.Value(i).Float()
	}
}

// Mean computes per-group means with a plain sum/count loop.
func (g *Grouped) Mean() (*frame.DataFrame, error) {
	return g.reduce(momentType, func(t *frame.Series, rows []int) values.Value {
		var sum float64
		var n int
		for _, i := range rows {
			if !t.IsNull(i) {
				sum += numericAt(t, i)
				n++
			}
		}
		if n == 0 {
			return values.NewNull(values.TFloat)
		}
		return values.NewFloat(sum / float64(n))
	})
}

// Std computes per-group sample standard deviations with a two-pass
// loop.
func (g *Grouped) Std() (*frame.DataFrame, error) {
	return g.reduce(momentType, func(t *frame.Series, rows []int) values.Value {
		var xs []float64
		for _, i := range rows {
			if !t.IsNull(i) {
				xs = append(xs, numericAt(t, i))
			}
		}
		if len(xs) < 2 {
			return values.NewNull(values.TFloat)
		}
		var sum float64
		for _, x := range xs {
			sum += x
		}
		mean := sum / float64(len(xs))
		var ss float64
		for _, x := range xs {
			ss += (x - mean) * (x - mean)
		}
		return values.NewFloat(math.Sqrt(ss / float64(len(xs)-1)))
	})
}

// Min returns per-group minima of non-null values.
func (g *Grouped) Min() (*frame.DataFrame, error) {
	return g.extremum(true)
}

// Max returns per-group maxima of non-null values.
func (g *Grouped) Max() (*frame.DataFrame, error) {
	return g.extremum(false)
}

func (g *Grouped) extremum(min bool) (*frame.DataFrame, error) {
	return g.reduce(func(t keel.ColType) keel.ColType { return t }, func(t *frame.Series, rows []int) values.Value {
		var best values.Value
		set := false
		for _, i := range rows {
			if t.IsNull(i) {
				continue
			}
			v := t.Value(i)
			if !set {
				best, set = v, true
				continue
			}
			if c := v.Compare(best); (min && c < 0) || (!min && c > 0) {
				best = v
			}
		}
		if !set {
			return values.NewNull(values.TInvalid)
		}
		return best
	})
}

// NUnique counts distinct values per group.
func (g *Grouped) NUnique(dropNA bool) (*frame.DataFrame, error) {
	return g.reduce(func(keel.ColType) keel.ColType { return keel.TInt }, func(t *frame.Series, rows []int) values.Value {
		seen := make(map[values.Value]struct{})
		hasNull := false
		for _, i := range rows {
			if t.IsNull(i) {
				hasNull = true
				continue
			}
			seen[t.Value(i)] = struct{}{}
		}
		n := int64(len(seen))
		if hasNull && !dropNA {
			n++
		}
		return values.NewInt(n)
	})
}

// All reports whether every value of a group is truthy. With skipNA
// unset a null counts as falsy.
func (g *Grouped) All(skipNA bool) (*frame.DataFrame, error) {
	return g.truth(true, skipNA)
}

// Any reports whether any value of a group is truthy. Nulls never
// count as truthy.
func (g *Grouped) Any() (*frame.DataFrame, error) {
	return g.truth(false, true)
}

func (g *Grouped) truth(all, skipNA bool) (*frame.DataFrame, error) {
	return g.reduce(func(t keel.ColType) keel.ColType {
		if t == keel.TTime {
			return keel.TInvalid
		}
		return keel.TBool
	}, func(t *frame.Series, rows []int) values.Value {
		result := all
		for _, i := range rows {
			if t.IsNull(i) {
				if all && !skipNA {
					result = false
				}
				continue
			}
			truthy := false
			switch t.Type() {
			case keel.TBool:
				truthy = t.Value(i).Bool()
			case keel.TInt:
				truthy = t.Value(i).Int() != 0
			case keel.TUInt:
				truthy = t.Value(i).UInt() != 0
			case keel.TFloat:
				truthy = t.Value(i).Float() != 0
			case keel.TString:
				truthy = t.Value(i).Str() != ""
			}
			if all {
				result = result && truthy
			} else {
				result = result || truthy
			}
		}
		return values.NewBool(result)
	})
}

// Size returns the per-group row count as an unnamed series indexed by
// the group keys.
func (g *Grouped) Size() (*frame.Series, error) {
	vs := make([]values.Value, len(g.groups))
	for i, grp := range g.groups {
		vs[i] = values.NewInt(int64(len(grp.rows)))
	}
	s, err := frame.NewSeries(nil, keel.TInt, vs)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(g.keyIndex())
}

// rowGroup returns the group position of every row, or -1 for dropped
// rows.
func (g *Grouped) rowGroup() []int {
	pos := make([]int, g.n)
	for i := range pos {
		pos[i] = -1
	}
	for gi, grp := range g.groups {
		for _, i := range grp.rows {
			pos[i] = gi
		}
	}
	return pos
}

// Shift moves values by periods rows within each group, keeping the
// original index.
func (g *Grouped) Shift(periods int) (*frame.DataFrame, error) {
	return g.transform(func(t *frame.Series) (keel.ColType, []values.Value, error) {
		out := g.nullColumn(t.Type())
		for _, grp := range g.groups {
			for k, row := range grp.rows {
				if src := k - periods; src >= 0 && src < len(grp.rows) {
					out[row] = t.Value(grp.rows[src])
				}
			}
		}
		return t.Type(), out, nil
	})
}

// Diff computes the difference to the value periods rows earlier within
// each group.
func (g *Grouped) Diff(periods int) (*frame.DataFrame, error) {
	return g.transform(func(t *frame.Series) (keel.ColType, []values.Value, error) {
		rt := diffType(t.Type())
		if rt == keel.TInvalid {
			return keel.TInvalid, nil, errors.Newf(codes.FailedPrecondition, "cannot diff column of type %v", t.Type())
		}
		out := g.nullColumn(rt)
		for _, grp := range g.groups {
			for k, row := range grp.rows {
				src := k - periods
				if src < 0 || src >= len(grp.rows) {
					continue
				}
				prev := grp.rows[src]
				if t.IsNull(row) || t.IsNull(prev) {
					continue
				}
				if rt == keel.TFloat {
					out[row] = values.NewFloat(t.Value(row).Float() - t.Value(prev).Float())
				} else {
					out[row] = values.NewInt(asInt(t, row) - asInt(t, prev))
				}
			}
		}
		return rt, out, nil
	})
}

func diffType(t keel.ColType) keel.ColType {
	switch t {
	case keel.TInt, keel.TUInt:
		return keel.TInt
	case keel.TFloat:
		return keel.TFloat
	default:
		return keel.TInvalid
	}
}

func asInt(t *frame.Series, i int) int64 {
	if t.Type() == keel.TUInt {
		return int64(t.Value(i).UInt())
	}
	return t.Value(i).Int()
}

// Rank computes ascending average ranks within each group.
func (g *Grouped) Rank() (*frame.DataFrame, error) {
	return g.transform(func(t *frame.Series) (keel.ColType, []values.Value, error) {
		out := g.nullColumn(keel.TFloat)
		for _, grp := range g.groups {
			var rows []int
			for _, row := range grp.rows {
				if !t.IsNull(row) {
					rows = append(rows, row)
				}
			}
			sort.SliceStable(rows, func(a, b int) bool {
				return t.Value(rows[a]).Compare(t.Value(rows[b])) < 0
			})
			for i := 0; i < len(rows); {
				j := i + 1
				for j < len(rows) && t.Value(rows[i]).Equal(t.Value(rows[j])) {
					j++
				}
				rank := float64(i+1+j) / 2
				for k := i; k < j; k++ {
					out[rows[k]] = values.NewFloat(rank)
				}
				i = j
			}
		}
		return keel.TFloat, out, nil
	})
}

func (g *Grouped) nullColumn(t keel.ColType) []values.Value {
	null := values.Null
	switch t {
	case keel.TBool:
		null = values.NewNull(values.TBool)
	case keel.TInt:
		null = values.NewNull(values.TInt)
	case keel.TUInt:
		null = values.NewNull(values.TUInt)
	case keel.TFloat:
		null = values.NewNull(values.TFloat)
	case keel.TString:
		null = values.NewNull(values.TString)
	case keel.TTime:
		null = values.NewNull(values.TTime)
	}
	out := make([]values.Value, g.n)
	for i := range out {
		out[i] = null
	}
	return out
}

func (g *Grouped) transform(fn func(*frame.Series) (keel.ColType, []values.Value, error)) (*frame.DataFrame, error) {
	series := make([]*frame.Series, 0, len(g.in.Targets))
	for _, t := range g.in.Targets {
		rt, vs, err := fn(t)
		if err != nil {
			return nil, err
		}
		s, err := frame.NewSeries(t.Name(), rt, vs)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	df, err := frame.New(series...)
	if err != nil {
		return nil, err
	}
	return df.WithIndex(g.in.Index)
}

// Unique collects per-group distinct values of the single target in
// first-seen order.
func (g *Grouped) Unique() (*frame.Index, [][]values.Value, error) {
	t := g.in.Targets[0]
	lists := make([][]values.Value, len(g.groups))
	for gi, grp := range g.groups {
		seen := make(map[values.Value]struct{})
		seenNull := false
		var list []values.Value
		for _, i := range grp.rows {
			v := t.Value(i)
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
		lists[gi] = list
	}
	return g.keyIndex(), lists, nil
}

// ValueCounts counts occurrences of each value of the single target
// within each group.
func (g *Grouped) ValueCounts(sortCounts, ascending, dropNA bool) (*frame.Series, error) {
	t := g.in.Targets[0]
	type entry struct {
		group int
		value values.Value
		count int64
	}
	var entries []*entry
	for gi, grp := range g.groups {
		byValue := make(map[values.Value]*entry)
		var nullEntry *entry
		for _, i := range grp.rows {
			v := t.Value(i)
			if v.IsNull() {
				if dropNA {
					continue
				}
				if nullEntry == nil {
					nullEntry = &entry{group: gi, value: v}
					entries = append(entries, nullEntry)
				}
				nullEntry.count++
				continue
			}
			e, ok := byValue[v]
			if !ok {
				e = &entry{group: gi, value: v}
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

	names := make([]frame.Label, 0, len(g.in.Keys)+1)
	levels := make([][]values.Value, 0, len(g.in.Keys)+1)
	for j, k := range g.in.Keys {
		level := make([]values.Value, len(entries))
		for i, e := range entries {
			level[i] = g.groups[e.group].keyVals[j]
		}
		names = append(names, k.Name())
		levels = append(levels, level)
	}
	valueLevel := make([]values.Value, len(entries))
	counts := make([]values.Value, len(entries))
	for i, e := range entries {
		valueLevel[i] = e.value
		counts[i] = values.NewInt(e.count)
	}
	names = append(names, t.Name())
	levels = append(levels, valueLevel)

	s, err := frame.NewSeries(t.Name(), keel.TInt, counts)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(frame.NewMultiIndex(names, levels))
}

// NSmallest returns the n smallest values of the single target per
// group, indexed by the key levels plus the original row labels.
func (g *Grouped) NSmallest(n int) (*frame.Series, error) {
	return g.pickExtremes(n, true)
}

// NLargest returns the n largest values of the single target per group.
func (g *Grouped) NLargest(n int) (*frame.Series, error) {
	return g.pickExtremes(n, false)
}

func (g *Grouped) pickExtremes(n int, smallest bool) (*frame.Series, error) {
	if n < 0 {
		n = 0
	}
	t := g.in.Targets[0]
	var picked []int
	var groupOf []int
	for gi, grp := range g.groups {
		var rows []int
		for _, row := range grp.rows {
			if !t.IsNull(row) {
				rows = append(rows, row)
			}
		}
		sort.SliceStable(rows, func(a, b int) bool {
			c := t.Value(rows[a]).Compare(t.Value(rows[b]))
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
			groupOf = append(groupOf, gi)
		}
	}

	names := make([]frame.Label, 0, len(g.in.Keys)+1)
	levels := make([][]values.Value, 0, len(g.in.Keys)+1)
	for j, k := range g.in.Keys {
		level := make([]values.Value, len(picked))
		for i := range picked {
			level[i] = g.groups[groupOf[i]].keyVals[j]
		}
		names = append(names, k.Name())
		levels = append(levels, level)
	}
	level := make([]values.Value, len(picked))
	for i, row := range picked {
		level[i] = g.in.Index.Value(0, row)
	}
	names = append(names, g.in.Index.Name(0))
	levels = append(levels, level)

	vs := make([]values.Value, len(picked))
	for i, row := range picked {
		vs[i] = t.Value(row)
	}
	s, err := frame.NewSeries(t.Name(), t.Type(), vs)
	if err != nil {
		return nil, err
	}
	return s.WithIndex(frame.NewMultiIndex(names, levels))
}

// GetGroup returns the rows whose key matches the given values.
func (g *Grouped) GetGroup(parts []values.Value) ([]int, error) {
	id := keyID(parts)
	for _, grp := range g.groups {
		if keyID(grp.keyVals) == id {
			return grp.rows, nil
		}
	}
	return nil, errors.Newf(codes.NotFound, "group %v does not exist", parts)
}
