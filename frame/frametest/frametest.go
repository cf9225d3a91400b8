// Package frametest provides helpers for comparing frames and series
// in tests.
package frametest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/values"
)

// Table is a plain-data rendering of a frame or series that go-cmp can
// diff directly. Null values render as nil.
type Table struct {
	IndexNames []string
	Index      [][]interface{}
	Columns    []string
	Types      []keel.ColType
	Data       [][]interface{}
}

// FromFrame flattens a frame into a Table.
func FromFrame(df *frame.DataFrame) *Table {
	t := &Table{}
	t.fillIndex(df.Index())
	for i := 0; i < df.NCols(); i++ {
		s := df.ColAt(i)
		t.Columns = append(t.Columns, s.Name().String())
		t.Types = append(t.Types, s.Type())
		t.Data = append(t.Data, column(s))
	}
	return t
}

// FromSeries flattens a series into a single-column Table, so a series
// and a one-column frame with the same shape compare equal.
func FromSeries(s *frame.Series) *Table {
	t := &Table{}
	t.fillIndex(s.Index())
	t.Columns = []string{s.Name().String()}
	t.Types = []keel.ColType{s.Type()}
	t.Data = [][]interface{}{column(s)}
	return t
}

func (t *Table) fillIndex(ix *frame.Index) {
	for level := 0; level < ix.NLevels(); level++ {
		t.IndexNames = append(t.IndexNames, ix.Name(level).String())
		vs := make([]interface{}, ix.Len())
		for i := 0; i < ix.Len(); i++ {
			vs[i] = native(ix.Value(level, i))
		}
		t.Index = append(t.Index, vs)
	}
}

func column(s *frame.Series) []interface{} {
	vs := make([]interface{}, s.Len())
	for i := 0; i < s.Len(); i++ {
		vs[i] = native(s.Value(i))
	}
	return vs
}

func native(v values.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Type() {
	case values.TBool:
		return v.Bool()
	case values.TInt:
		return v.Int()
	case values.TUInt:
		return v.UInt()
	case values.TFloat:
		return v.Float()
	case values.TString:
		return v.Str()
	case values.TTime:
		return v.Time()
	default:
		return nil
	}
}

// DiffFrames compares two frames and fails the test with a diff on
// mismatch. Floats compare with a small tolerance.
func DiffFrames(t *testing.T, want, got *frame.DataFrame) {
	t.Helper()
	if diff := cmp.Diff(FromFrame(want), FromFrame(got), approx()); diff != "" {
		t.Errorf("unexpected frame -want/+got:\n%s", diff)
	}
}

// DiffSeries compares two series and fails the test with a diff on
// mismatch.
func DiffSeries(t *testing.T, want, got *frame.Series) {
	t.Helper()
	if diff := cmp.Diff(FromSeries(want), FromSeries(got), approx()); diff != "" {
		t.Errorf("unexpected series -want/+got:\n%s", diff)
	}
}

// DiffFrameSeries compares a one-column frame against a series.
func DiffFrameSeries(t *testing.T, want *frame.DataFrame, got *frame.Series) {
	t.Helper()
	if diff := cmp.Diff(FromFrame(want), FromSeries(got), approx()); diff != "" {
		t.Errorf("unexpected series -want/+got:\n%s", diff)
	}
}

func approx() cmp.Option {
	return cmpopts.EquateApprox(0, 1e-9)
}

// MustSeries constructs a series from possibly-null data, where a nil
// entry stands for a null value. It panics on error, which only happens
// for malformed inputs in the test itself.
func MustSeries(name frame.Label, typ keel.ColType, data ...interface{}) *frame.Series {
	vs := make([]values.Value, len(data))
	for i, d := range data {
		if d == nil {
			vs[i] = values.Null
			continue
		}
		vs[i] = values.New(d)
	}
	s, err := frame.NewSeries(name, typ, vs)
	if err != nil {
		panic(err)
	}
	return s
}

// MustFrame constructs a frame from its columns, panicking on error.
func MustFrame(series ...*frame.Series) *frame.DataFrame {
	df, err := frame.New(series...)
	if err != nil {
		panic(err)
	}
	return df
}
