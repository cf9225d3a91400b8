package execute_test

import (
	"testing"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/execute"
	"github.com/keeldata/keel/values"
)

func TestGroupKeyBuilder(t *testing.T) {
	key, err := execute.NewGroupKeyBuilder(nil).
		AddKeyValue("b", values.NewString("x")).
		AddKeyValue("a", values.NewInt(7)).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if want, got := 2, key.NCols(); want != got {
		t.Fatalf("unexpected column count: want %d, got %d", want, got)
	}
	if want, got := "x", key.LabelValue("b").Str(); want != got {
		t.Errorf("unexpected value for b: want %q, got %q", want, got)
	}
	if want, got := int64(7), key.LabelValue("a").Int(); want != got {
		t.Errorf("unexpected value for a: want %d, got %d", want, got)
	}

	// The sorted view orders columns by label without changing the
	// original.
	sorted := key.Sorted()
	if want, got := "a", sorted.Col(0).Label; want != got {
		t.Errorf("unexpected first sorted label: want %q, got %q", want, got)
	}
	if want, got := "b", key.Col(0).Label; want != got {
		t.Errorf("unexpected first label: want %q, got %q", want, got)
	}
}

func TestGroupKeyBuilder_InvalidValue(t *testing.T) {
	_, err := execute.NewGroupKeyBuilder(nil).
		AddKeyValue("a", values.Null).
		Build()
	if err == nil {
		t.Fatal("expected error for an untyped null key value")
	}
}

func TestGroupKeyEqual(t *testing.T) {
	cols := []keel.ColMeta{
		{Label: "a", Type: keel.TInt},
		{Label: "b", Type: keel.TString},
	}
	mk := func(a values.Value, b values.Value) keel.GroupKey {
		return execute.NewGroupKey(cols, []values.Value{a, b})
	}

	for _, tt := range []struct {
		name string
		x, y keel.GroupKey
		want bool
	}{
		{
			name: "equal",
			x:    mk(values.NewInt(1), values.NewString("x")),
			y:    mk(values.NewInt(1), values.NewString("x")),
			want: true,
		},
		{
			name: "different value",
			x:    mk(values.NewInt(1), values.NewString("x")),
			y:    mk(values.NewInt(2), values.NewString("x")),
			want: false,
		},
		{
			name: "nulls are equal",
			x:    mk(values.NewNull(values.TInt), values.NewString("x")),
			y:    mk(values.NewNull(values.TInt), values.NewString("x")),
			want: true,
		},
		{
			name: "null is not a value",
			x:    mk(values.NewNull(values.TInt), values.NewString("x")),
			y:    mk(values.NewInt(0), values.NewString("x")),
			want: false,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := keel.GroupKeyEqual(tt.x, tt.y); got != tt.want {
				t.Errorf("unexpected equality: want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGroupKeyLess(t *testing.T) {
	cols := []keel.ColMeta{{Label: "a", Type: keel.TInt}}
	mk := func(v values.Value) keel.GroupKey {
		return execute.NewGroupKey(cols, []values.Value{v})
	}

	if !keel.GroupKeyLess(mk(values.NewInt(1)), mk(values.NewInt(2))) {
		t.Error("expected 1 < 2")
	}
	if keel.GroupKeyLess(mk(values.NewInt(2)), mk(values.NewInt(1))) {
		t.Error("expected !(2 < 1)")
	}
	// Null sorts before every value.
	if !keel.GroupKeyLess(mk(values.NewNull(values.TInt)), mk(values.NewInt(-100))) {
		t.Error("expected null < -100")
	}
}
