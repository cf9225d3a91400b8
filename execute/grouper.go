package execute

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/memory"

	"github.com/keeldata/keel"
	keelarrow "github.com/keeldata/keel/arrow"
	"github.com/keeldata/keel/values"
)

// DefaultChunkSize is the number of rows routed per engine chunk.
const DefaultChunkSize = 1024

// Group is the set of row indices that share a group key. Rows are in
// ascending order.
type Group struct {
	Key  keel.GroupKey
	Rows []int
}

// Grouping is the result of routing every row of a table to a group.
// Groups appear in first-seen row order. Dropped is the number of rows
// excluded because their key contained a null.
type Grouping struct {
	Groups  []*Group
	Dropped int
}

// Lookup returns the group whose key equals the given key, or nil.
func (g *Grouping) Lookup(key keel.GroupKey) *Group {
	for _, grp := range g.Groups {
		if keel.GroupKeyEqual(grp.Key, key) {
			return grp
		}
	}
	return nil
}

// groupID renders a sorted key into a map key. Unlike String it tags
// each value with its type and marks nulls with a byte outside the
// value payload so distinct keys never collide.
func groupID(key keel.GroupKey) string {
	var b strings.Builder
	for j := 0; j < key.NCols(); j++ {
		c := key.Col(j)
		fmt.Fprintf(&b, "%s\x1f%d\x1f", c.Label, c.Type)
		if key.IsNull(j) {
			b.WriteString("n")
		} else {
			b.WriteString("v")
			b.WriteString(key.Value(j).String())
		}
		b.WriteString("\x1e")
	}
	return b.String()
}

// GroupRows routes each of n rows into a group keyed by the values of
// the key columns at that row. Rows are consumed in chunks so the
// routing work is identical whether the table arrived whole or as a
// stream of partial buffers. When dropNA is set, rows with a null in
// any key column are dropped rather than grouped.
func GroupRows(keyCols []keel.ColMeta, keyVals []array.Interface, n int, dropNA bool, chunkSize int) *Grouping {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	grouping := &Grouping{}
	lookup := make(map[string]*Group)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			vs := make([]values.Value, len(keyCols))
			null := false
			for j, col := range keyCols {
				vs[j] = keelarrow.Value(keyVals[j], col.Type, i)
				if vs[j].IsNull() {
					null = true
				}
			}
			if null && dropNA {
				grouping.Dropped++
				continue
			}

			key := NewGroupKey(keyCols, vs)
			id := groupID(key.Sorted())
			grp, ok := lookup[id]
			if !ok {
				grp = &Group{Key: key}
				lookup[id] = grp
				grouping.Groups = append(grouping.Groups, grp)
			}
			grp.Rows = append(grp.Rows, i)
		}
	}
	return grouping
}

// GroupTable materializes the rows of one group into a buffer carrying
// the group's key. The given columns need not be the key columns.
func GroupTable(grp *Group, cols []keel.ColMeta, vals []array.Interface, mem memory.Allocator) (*keelarrow.TableBuffer, error) {
	builders := make([]array.Builder, len(cols))
	for j, c := range cols {
		builders[j] = keelarrow.NewBuilder(c.Type, mem)
	}
	for _, i := range grp.Rows {
		for j, c := range cols {
			if err := keelarrow.AppendValue(builders[j], keelarrow.Value(vals[j], c.Type, i)); err != nil {
				return nil, err
			}
		}
	}
	buf := &keelarrow.TableBuffer{
		GroupKey: grp.Key,
		Columns:  cols,
		Values:   make([]array.Interface, len(builders)),
	}
	for j, b := range builders {
		buf.Values[j] = b.NewArray()
	}
	return buf, nil
}
