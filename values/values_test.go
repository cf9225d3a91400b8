package values_test

import (
	"testing"

	"github.com/keeldata/keel/values"
)

func TestNew(t *testing.T) {
	for _, tt := range []struct {
		name string
		v    interface{}
		want values.Type
	}{
		{name: "bool", v: true, want: values.TBool},
		{name: "int", v: 42, want: values.TInt},
		{name: "int64", v: int64(42), want: values.TInt},
		{name: "uint64", v: uint64(42), want: values.TUInt},
		{name: "float", v: 4.2, want: values.TFloat},
		{name: "string", v: "x", want: values.TString},
		{name: "time", v: values.Time(1), want: values.TTime},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := values.New(tt.v)
			if got.Type() != tt.want {
				t.Errorf("unexpected type: want %v, got %v", tt.want, got.Type())
			}
			if got.IsNull() {
				t.Error("unexpected null")
			}
		})
	}
}

func TestNull(t *testing.T) {
	if !values.Null.IsNull() {
		t.Error("expected Null to be null")
	}
	n := values.NewNull(values.TInt)
	if !n.IsNull() {
		t.Error("expected a typed null to be null")
	}
	if n.Type() != values.TInt {
		t.Errorf("unexpected type: want %v, got %v", values.TInt, n.Type())
	}
	if !n.Equal(values.Null) {
		t.Error("expected nulls of different declared types to be equal")
	}
}

func TestCompare(t *testing.T) {
	for _, tt := range []struct {
		name string
		a, b values.Value
		want int
	}{
		{name: "int less", a: values.NewInt(1), b: values.NewInt(2), want: -1},
		{name: "int equal", a: values.NewInt(2), b: values.NewInt(2), want: 0},
		{name: "string greater", a: values.NewString("b"), b: values.NewString("a"), want: 1},
		{name: "false before true", a: values.NewBool(false), b: values.NewBool(true), want: -1},
		{name: "null first", a: values.NewNull(values.TInt), b: values.NewInt(-100), want: -1},
		{name: "nulls equal", a: values.Null, b: values.NewNull(values.TString), want: 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Compare(tt.b)
			switch {
			case tt.want < 0 && got >= 0,
				tt.want == 0 && got != 0,
				tt.want > 0 && got <= 0:
				t.Errorf("unexpected comparison: want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCheckType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when reading an int as a string")
		}
	}()
	_ = values.NewInt(1).Str()
}
