package execute

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/values"
)

type groupKey struct {
	cols   []keel.ColMeta
	values []values.Value
	sorted []int // maintains a list of the sorted indexes
}

// NewGroupKey constructs a group key from columns and values. The
// column and value slices must have the same length and are retained by
// the key.
func NewGroupKey(cols []keel.ColMeta, vs []values.Value) keel.GroupKey {
	return newGroupKey(cols, vs)
}

func newGroupKey(cols []keel.ColMeta, vs []values.Value) *groupKey {
	sorted := make([]int, len(cols))
	for i := range cols {
		sorted[i] = i
	}
	sort.Slice(sorted, func(i, j int) bool {
		return cols[sorted[i]].Label < cols[sorted[j]].Label
	})
	return &groupKey{
		cols:   cols,
		values: vs,
		sorted: sorted,
	}
}

func (k *groupKey) NCols() int {
	return len(k.cols)
}

func (k *groupKey) Col(idx int) keel.ColMeta {
	return k.cols[idx]
}

func (k *groupKey) HasCol(label string) bool {
	return keel.ColIdx(label, k.cols) >= 0
}

func (k *groupKey) Index(label string) int {
	return keel.ColIdx(label, k.cols)
}

func (k *groupKey) LabelValue(label string) values.Value {
	idx := keel.ColIdx(label, k.cols)
	if idx < 0 {
		return values.Null
	}
	return k.values[idx]
}

func (k *groupKey) IsNull(j int) bool {
	return k.values[j].IsNull()
}

func (k *groupKey) Value(j int) values.Value {
	return k.values[j]
}

func (k *groupKey) Sorted() keel.GroupKey {
	return sortedGroupKey{k: k}
}

func (k *groupKey) String() string {
	var b strings.Builder
	b.WriteRune('{')
	for j, c := range k.cols {
		if j != 0 {
			b.WriteRune(',')
		}
		fmt.Fprintf(&b, "%s=%v", c.Label, k.values[j])
	}
	b.WriteRune('}')
	return b.String()
}

// sortedGroupKey presents the columns of a group key in label order so
// that keys built with the same columns in a different order compare
// equal.
type sortedGroupKey struct {
	k *groupKey
}

func (k sortedGroupKey) NCols() int {
	return k.k.NCols()
}

func (k sortedGroupKey) Col(idx int) keel.ColMeta {
	return k.k.Col(k.k.sorted[idx])
}

func (k sortedGroupKey) HasCol(label string) bool {
	return k.k.HasCol(label)
}

func (k sortedGroupKey) Index(label string) int {
	for i, j := range k.k.sorted {
		if k.k.cols[j].Label == label {
			return i
		}
	}
	return -1
}

func (k sortedGroupKey) LabelValue(label string) values.Value {
	return k.k.LabelValue(label)
}

func (k sortedGroupKey) IsNull(j int) bool {
	return k.k.IsNull(k.k.sorted[j])
}

func (k sortedGroupKey) Value(j int) values.Value {
	return k.k.Value(k.k.sorted[j])
}

func (k sortedGroupKey) Sorted() keel.GroupKey {
	return k
}

func (k sortedGroupKey) String() string {
	return k.k.String()
}
