package execute_test

import (
	"testing"

	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/memory"
	"github.com/google/go-cmp/cmp"

	"github.com/keeldata/keel"
	keelarrow "github.com/keeldata/keel/arrow"
	"github.com/keeldata/keel/execute"
	"github.com/keeldata/keel/values"
)

// buildArray constructs an arrow array of the given type where a nil
// entry stands for null.
func buildArray(t *testing.T, typ keel.ColType, data ...interface{}) array.Interface {
	t.Helper()
	b := keelarrow.NewBuilder(typ, memory.NewGoAllocator())
	defer b.Release()
	for _, d := range data {
		var v values.Value
		if d == nil {
			v = values.Null
		} else {
			v = values.New(d)
		}
		if err := keelarrow.AppendValue(b, v); err != nil {
			t.Fatal(err)
		}
	}
	return b.NewArray()
}

func rowsOf(grouping *execute.Grouping) [][]int {
	out := make([][]int, len(grouping.Groups))
	for i, grp := range grouping.Groups {
		out[i] = grp.Rows
	}
	return out
}

func TestGroupRows(t *testing.T) {
	cols := []keel.ColMeta{{Label: "k", Type: keel.TString}}
	vals := []array.Interface{
		buildArray(t, keel.TString, "a", "b", "a", nil, "b", "a"),
	}

	t.Run("dropna", func(t *testing.T) {
		grouping := execute.GroupRows(cols, vals, 6, true, execute.DefaultChunkSize)
		want := [][]int{{0, 2, 5}, {1, 4}}
		if diff := cmp.Diff(want, rowsOf(grouping)); diff != "" {
			t.Errorf("unexpected groups -want/+got:\n%s", diff)
		}
		if grouping.Dropped != 1 {
			t.Errorf("unexpected dropped count: want 1, got %d", grouping.Dropped)
		}
	})

	t.Run("null keys group together", func(t *testing.T) {
		grouping := execute.GroupRows(cols, vals, 6, false, execute.DefaultChunkSize)
		want := [][]int{{0, 2, 5}, {1, 4}, {3}}
		if diff := cmp.Diff(want, rowsOf(grouping)); diff != "" {
			t.Errorf("unexpected groups -want/+got:\n%s", diff)
		}
	})

	t.Run("chunk size does not change the routing", func(t *testing.T) {
		whole := execute.GroupRows(cols, vals, 6, true, execute.DefaultChunkSize)
		chunked := execute.GroupRows(cols, vals, 6, true, 2)
		if diff := cmp.Diff(rowsOf(whole), rowsOf(chunked)); diff != "" {
			t.Errorf("unexpected difference between chunk sizes -want/+got:\n%s", diff)
		}
	})
}

func TestGroupRows_MultipleKeys(t *testing.T) {
	cols := []keel.ColMeta{
		{Label: "k1", Type: keel.TString},
		{Label: "k2", Type: keel.TInt},
	}
	vals := []array.Interface{
		buildArray(t, keel.TString, "a", "a", "b", "a"),
		buildArray(t, keel.TInt, 1, 2, 1, 1),
	}
	grouping := execute.GroupRows(cols, vals, 4, true, execute.DefaultChunkSize)

	want := [][]int{{0, 3}, {1}, {2}}
	if diff := cmp.Diff(want, rowsOf(grouping)); diff != "" {
		t.Errorf("unexpected groups -want/+got:\n%s", diff)
	}
}

func TestGroupRows_ValuesDoNotCollideAcrossTypes(t *testing.T) {
	// The string "1" and the integer 1 must land in distinct groups.
	cols := []keel.ColMeta{
		{Label: "k1", Type: keel.TString},
		{Label: "k2", Type: keel.TString},
	}
	vals := []array.Interface{
		buildArray(t, keel.TString, "1", "1\x1e1"),
		buildArray(t, keel.TString, "1\x1e1", "1"),
	}
	grouping := execute.GroupRows(cols, vals, 2, true, execute.DefaultChunkSize)
	if len(grouping.Groups) != 2 {
		t.Errorf("unexpected group count: want 2, got %d", len(grouping.Groups))
	}
}

func TestGroupRows_NullDoesNotCollideWithNULString(t *testing.T) {
	// A kept null key and the one-byte string "\x00" are distinct keys.
	cols := []keel.ColMeta{{Label: "k", Type: keel.TString}}
	vals := []array.Interface{
		buildArray(t, keel.TString, "\x00", nil),
	}
	grouping := execute.GroupRows(cols, vals, 2, false, execute.DefaultChunkSize)
	want := [][]int{{0}, {1}}
	if diff := cmp.Diff(want, rowsOf(grouping)); diff != "" {
		t.Errorf("unexpected groups -want/+got:\n%s", diff)
	}
}

func TestGroupTable(t *testing.T) {
	keyCols := []keel.ColMeta{{Label: "k", Type: keel.TString}}
	keys := []array.Interface{
		buildArray(t, keel.TString, "a", "b", "a"),
	}
	grouping := execute.GroupRows(keyCols, keys, 3, true, execute.DefaultChunkSize)

	cols := []keel.ColMeta{{Label: "v", Type: keel.TInt}}
	vals := []array.Interface{buildArray(t, keel.TInt, 1, 2, nil)}
	buf, err := execute.GroupTable(grouping.Groups[0], cols, vals, memory.NewGoAllocator())
	if err != nil {
		t.Fatal(err)
	}

	if !keel.GroupKeyEqual(grouping.Groups[0].Key, buf.Key()) {
		t.Errorf("unexpected buffer key: want %v, got %v", grouping.Groups[0].Key, buf.Key())
	}
	if diff := cmp.Diff(cols, buf.Cols()); diff != "" {
		t.Errorf("unexpected buffer columns -want/+got:\n%s", diff)
	}
	if want, got := 2, buf.Len(); want != got {
		t.Fatalf("unexpected buffer length: want %d, got %d", want, got)
	}
	got := []values.Value{
		keelarrow.Value(buf.Values[0], keel.TInt, 0),
		keelarrow.Value(buf.Values[0], keel.TInt, 1),
	}
	want := []values.Value{values.NewInt(1), values.NewNull(values.TInt)}
	if diff := cmp.Diff(want, got, cmp.Comparer(values.Value.Equal)); diff != "" {
		t.Errorf("unexpected buffer values -want/+got:\n%s", diff)
	}
}

func TestGrouping_Lookup(t *testing.T) {
	cols := []keel.ColMeta{{Label: "k", Type: keel.TInt}}
	vals := []array.Interface{buildArray(t, keel.TInt, 1, 2, 1)}
	grouping := execute.GroupRows(cols, vals, 3, true, execute.DefaultChunkSize)

	grp := grouping.Lookup(execute.NewGroupKey(cols, []values.Value{values.NewInt(2)}))
	if grp == nil {
		t.Fatal("expected a group for key 2")
	}
	if diff := cmp.Diff([]int{1}, grp.Rows); diff != "" {
		t.Errorf("unexpected rows -want/+got:\n%s", diff)
	}

	if grp := grouping.Lookup(execute.NewGroupKey(cols, []values.Value{values.NewInt(9)})); grp != nil {
		t.Errorf("expected no group for key 9, got rows %v", grp.Rows)
	}
}
