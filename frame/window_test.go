package frame_test

import (
	"testing"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/frame/frametest"
	"github.com/keeldata/keel/internal/errors"
)

func TestGroupBy_Shift(t *testing.T) {
	df := sampleFrame(t)
	g, err := df.GroupBy("a")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("frame", func(t *testing.T) {
		got, err := g.Shift(1)
		if err != nil {
			t.Fatal(err)
		}
		// Transforms keep the original row labels.
		want := frametest.MustFrame(
			frametest.MustSeries(frame.L("b"), keel.TInt, nil, nil, int64(2), nil, int64(3), int64(3)),
			frametest.MustSeries(frame.L("c"), keel.TFloat, nil, nil, 2.0, nil, 3.0, nil),
			frametest.MustSeries(frame.L("d"), keel.TString, nil, nil, "y", nil, "y", "x"),
		)
		frametest.DiffFrames(t, want, got)
	})

	t.Run("series", func(t *testing.T) {
		sg, err := g.Col("b")
		if err != nil {
			t.Fatal(err)
		}
		got, err := sg.Shift(-1)
		if err != nil {
			t.Fatal(err)
		}
		want := frametest.MustSeries(frame.L("b"), keel.TInt, nil, int64(7), nil, int64(3), int64(1), nil)
		frametest.DiffSeries(t, want, got)
	})

	t.Run("shift then sum", func(t *testing.T) {
		sg, err := g.Col("b")
		if err != nil {
			t.Fatal(err)
		}
		shifted, err := sg.Shift(1)
		if err != nil {
			t.Fatal(err)
		}
		a, err := df.Col("a")
		if err != nil {
			t.Fatal(err)
		}
		sg2, err := shifted.GroupBy(a)
		if err != nil {
			t.Fatal(err)
		}
		got, err := sg2.Sum()
		if err != nil {
			t.Fatal(err)
		}
		want, err := frame.Ints("b", 0, 2, 6).
			WithIndex(frame.NewIndex(frame.L("a"), intValues(1, 2, 3)))
		if err != nil {
			t.Fatal(err)
		}
		frametest.DiffSeries(t, want, got)
	})
}

func TestGroupBy_Diff(t *testing.T) {
	df := sampleFrame(t)
	g, err := df.GroupBy("a")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("frame drops non-numeric columns", func(t *testing.T) {
		got, err := g.Diff(1)
		if err != nil {
			t.Fatal(err)
		}
		want := frametest.MustFrame(
			frametest.MustSeries(frame.L("b"), keel.TInt, nil, nil, int64(5), nil, int64(0), int64(-2)),
			frametest.MustSeries(frame.L("c"), keel.TFloat, nil, nil, nil, nil, nil, nil),
		)
		frametest.DiffFrames(t, want, got)
	})

	t.Run("projected string column errors", func(t *testing.T) {
		sg, err := g.Col("d")
		if err != nil {
			t.Fatal(err)
		}
		_, err = sg.Diff(1)
		if want, got := codes.FailedPrecondition, errors.Code(err); want != got {
			t.Errorf("unexpected error code: want %v, got %v (%v)", want, got, err)
		}
	})
}

func TestGroupBy_Rank(t *testing.T) {
	df := sampleFrame(t)
	g, err := df.GroupBy("a")
	if err != nil {
		t.Fatal(err)
	}
	sg, err := g.Col("b")
	if err != nil {
		t.Fatal(err)
	}
	got, err := sg.Rank()
	if err != nil {
		t.Fatal(err)
	}

	// Ties share the average of their ranks.
	want := frametest.MustSeries(frame.L("b"), keel.TFloat, 1.0, 1.0, 2.0, 2.5, 2.5, 1.0)
	frametest.DiffSeries(t, want, got)
}
