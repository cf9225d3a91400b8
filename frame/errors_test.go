package frame_test

import (
	"testing"

	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/frame/frametest"
	"github.com/keeldata/keel/internal/errors"
)

func TestGroupBy_Errors(t *testing.T) {
	df := sampleFrame(t)

	for _, tt := range []struct {
		name string
		call func() error
		want codes.Code
	}{
		{
			name: "missing key column",
			call: func() error {
				_, err := df.GroupBy("nope")
				return err
			},
			want: codes.NotFound,
		},
		{
			name: "no group keys",
			call: func() error {
				_, err := df.GroupBy([]interface{}{})
				return err
			},
			want: codes.Invalid,
		},
		{
			name: "group by a frame",
			call: func() error {
				_, err := df.GroupBy(df)
				return err
			},
			want: codes.Invalid,
		},
		{
			name: "nested grouper",
			call: func() error {
				_, err := df.GroupBy([]interface{}{[]string{"a", "b"}})
				return err
			},
			want: codes.Invalid,
		},
		{
			name: "grouper of the wrong type",
			call: func() error {
				_, err := df.GroupBy(42)
				return err
			},
			want: codes.FailedPrecondition,
		},
		{
			name: "misaligned key series",
			call: func() error {
				_, err := df.GroupBy(frame.Ints("k", 1, 2))
				return err
			},
			want: codes.Invalid,
		},
		{
			name: "columns axis",
			call: func() error {
				_, err := df.GroupBy("a", frame.WithAxis(frame.AxisColumns))
				return err
			},
			want: codes.Unimplemented,
		},
		{
			name: "projection after as_index=false",
			call: func() error {
				g, err := df.GroupBy("a", frame.AsIndex(false))
				if err != nil {
					return err
				}
				_, err = g.Col("b")
				return err
			},
			want: codes.Invalid,
		},
		{
			name: "mean of a string column",
			call: func() error {
				g, err := df.GroupBy("a")
				if err != nil {
					return err
				}
				sg, err := g.Col("d")
				if err != nil {
					return err
				}
				_, err = sg.Mean()
				return err
			},
			want: codes.FailedPrecondition,
		},
		{
			name: "sum of a projected string column",
			call: func() error {
				g, err := df.GroupBy("a")
				if err != nil {
					return err
				}
				pg, err := g.Cols("d")
				if err != nil {
					return err
				}
				_, err = pg.Sum()
				return err
			},
			want: codes.FailedPrecondition,
		},
		{
			name: "projection of a missing column",
			call: func() error {
				g, err := df.GroupBy("a")
				if err != nil {
					return err
				}
				_, err = g.Col("nope")
				return err
			},
			want: codes.NotFound,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Code(err); got != tt.want {
				t.Errorf("unexpected error code: want %v, got %v (%v)", tt.want, got, err)
			}
		})
	}
}

func TestSeriesGroupBy_Errors(t *testing.T) {
	s := frame.Ints("v", 1, 2, 3)

	for _, tt := range []struct {
		name string
		call func() error
		want codes.Code
	}{
		{
			name: "label grouper without a frame",
			call: func() error {
				_, err := s.GroupBy("k")
				return err
			},
			want: codes.NotFound,
		},
		{
			name: "as_index=false",
			call: func() error {
				_, err := s.GroupBy(frame.Ints("k", 1, 1, 2), frame.AsIndex(false))
				return err
			},
			want: codes.FailedPrecondition,
		},
		{
			name: "misaligned key series",
			call: func() error {
				_, err := s.GroupBy(frame.Ints("k", 1, 2))
				return err
			},
			want: codes.Invalid,
		},
		{
			name: "group by a frame",
			call: func() error {
				_, err := s.GroupBy(frametest.MustFrame(frame.Ints("x", 1, 2, 3)))
				return err
			},
			want: codes.Invalid,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Code(err); got != tt.want {
				t.Errorf("unexpected error code: want %v, got %v (%v)", tt.want, got, err)
			}
		})
	}
}
