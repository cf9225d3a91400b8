package frame_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/frame/frametest"
	"github.com/keeldata/keel/reference"
	"github.com/keeldata/keel/values"
)

// randomFrame builds a deterministic mixed-type frame with nulls in
// both keys and values.
func randomFrame(t *testing.T, n int, seed int64) *frame.DataFrame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	k1 := make([]values.Value, n)
	k2 := make([]values.Value, n)
	v1 := make([]values.Value, n)
	v2 := make([]values.Value, n)
	v3 := make([]values.Value, n)
	v4 := make([]values.Value, n)
	for i := 0; i < n; i++ {
		if rng.Intn(10) == 0 {
			k1[i] = values.Null
		} else {
			k1[i] = values.NewString(fmt.Sprintf("k%d", rng.Intn(4)))
		}
		k2[i] = values.NewInt(int64(rng.Intn(3)))
		if rng.Intn(8) == 0 {
			v1[i] = values.Null
		} else {
			v1[i] = values.NewInt(int64(rng.Intn(100) - 50))
		}
		if rng.Intn(8) == 0 {
			v2[i] = values.Null
		} else {
			v2[i] = values.NewFloat(rng.NormFloat64() * 10)
		}
		v3[i] = values.NewString(fmt.Sprintf("s%d", rng.Intn(5)))
		v4[i] = values.NewBool(rng.Intn(2) == 0)
	}

	mk := func(name string, typ keel.ColType, vs []values.Value) *frame.Series {
		s, err := frame.NewSeries(frame.L(name), typ, vs)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	return frametest.MustFrame(
		mk("k1", keel.TString, k1),
		mk("k2", keel.TInt, k2),
		mk("v1", keel.TInt, v1),
		mk("v2", keel.TFloat, v2),
		mk("v3", keel.TString, v3),
		mk("v4", keel.TBool, v4),
	)
}

// oracleInput resolves the same keys and targets the grouped frame
// operates on.
func oracleInput(t *testing.T, df *frame.DataFrame, keys []string, asIndex, dropNA bool) reference.Input {
	t.Helper()
	in := reference.Input{
		Index:   df.Index(),
		AsIndex: asIndex,
		DropNA:  dropNA,
	}
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		s, err := df.Col(k)
		if err != nil {
			t.Fatal(err)
		}
		in.Keys = append(in.Keys, s)
		isKey[k] = true
	}
	for i := 0; i < df.NCols(); i++ {
		s := df.ColAt(i)
		if !isKey[s.Name().String()] {
			in.Targets = append(in.Targets, s)
		}
	}
	return in
}

func TestGroupByMatchesOracle(t *testing.T) {
	for _, fixture := range []struct {
		name    string
		keys    []string
		asIndex bool
		dropNA  bool
	}{
		{name: "single key", keys: []string{"k1"}, asIndex: true, dropNA: true},
		{name: "single key keep nulls", keys: []string{"k1"}, asIndex: true, dropNA: false},
		{name: "single key not as index", keys: []string{"k1"}, asIndex: false, dropNA: true},
		{name: "two keys", keys: []string{"k1", "k2"}, asIndex: true, dropNA: true},
		{name: "two keys keep nulls", keys: []string{"k1", "k2"}, asIndex: false, dropNA: false},
	} {
		t.Run(fixture.name, func(t *testing.T) {
			df := randomFrame(t, 200, 42)
			g, err := df.GroupBy(fixture.keys,
				frame.AsIndex(fixture.asIndex),
				frame.DropNA(fixture.dropNA),
			)
			if err != nil {
				t.Fatal(err)
			}
			oracle := reference.New(oracleInput(t, df, fixture.keys, fixture.asIndex, fixture.dropNA))

			for _, tt := range []struct {
				name   string
				got    func() (*frame.DataFrame, error)
				oracle func() (*frame.DataFrame, error)
			}{
				{name: "sum", got: g.Sum, oracle: oracle.Sum},
				{name: "count", got: g.Count, oracle: oracle.Count},
				{name: "mean", got: g.Mean, oracle: oracle.Mean},
				{name: "std", got: g.Std, oracle: oracle.Std},
				{name: "min", got: g.Min, oracle: oracle.Min},
				{name: "max", got: g.Max, oracle: oracle.Max},
				{
					name:   "nunique",
					got:    func() (*frame.DataFrame, error) { return g.NUnique(true) },
					oracle: func() (*frame.DataFrame, error) { return oracle.NUnique(true) },
				},
				{
					name:   "nunique keep nulls",
					got:    func() (*frame.DataFrame, error) { return g.NUnique(false) },
					oracle: func() (*frame.DataFrame, error) { return oracle.NUnique(false) },
				},
				{
					name:   "all",
					got:    func() (*frame.DataFrame, error) { return g.All(true) },
					oracle: func() (*frame.DataFrame, error) { return oracle.All(true) },
				},
				{
					name:   "any",
					got:    func() (*frame.DataFrame, error) { return g.Any() },
					oracle: func() (*frame.DataFrame, error) { return oracle.Any() },
				},
			} {
				t.Run(tt.name, func(t *testing.T) {
					got, err := tt.got()
					if err != nil {
						t.Fatal(err)
					}
					want, err := tt.oracle()
					if err != nil {
						t.Fatal(err)
					}
					frametest.DiffFrames(t, want, got)
				})
			}

			t.Run("size", func(t *testing.T) {
				got, err := g.Size()
				if err != nil {
					t.Fatal(err)
				}
				want, err := oracle.Size()
				if err != nil {
					t.Fatal(err)
				}
				frametest.DiffSeries(t, want, got)
			})
		})
	}
}

func TestGroupByTransformsMatchOracle(t *testing.T) {
	df := randomFrame(t, 150, 7)
	keys := []string{"k1"}
	g, err := df.GroupBy(keys)
	if err != nil {
		t.Fatal(err)
	}
	oracle := reference.New(oracleInput(t, df, keys, true, true))

	t.Run("shift", func(t *testing.T) {
		for _, periods := range []int{1, 2, -1} {
			got, err := g.Shift(periods)
			if err != nil {
				t.Fatal(err)
			}
			want, err := oracle.Shift(periods)
			if err != nil {
				t.Fatal(err)
			}
			frametest.DiffFrames(t, want, got)
		}
	})

	t.Run("rank", func(t *testing.T) {
		got, err := g.Rank()
		if err != nil {
			t.Fatal(err)
		}
		want, err := oracle.Rank()
		if err != nil {
			t.Fatal(err)
		}
		frametest.DiffFrames(t, want, got)
	})

	t.Run("diff", func(t *testing.T) {
		// Diff applies to numeric columns only, so the oracle input
		// is narrowed the same way the grouped frame narrows itself.
		in := oracleInput(t, df, keys, true, true)
		var numeric []*frame.Series
		for _, s := range in.Targets {
			if s.Type() == keel.TInt || s.Type() == keel.TFloat {
				numeric = append(numeric, s)
			}
		}
		in.Targets = numeric
		narrowed := reference.New(in)

		for _, periods := range []int{1, -1} {
			got, err := g.Diff(periods)
			if err != nil {
				t.Fatal(err)
			}
			want, err := narrowed.Diff(periods)
			if err != nil {
				t.Fatal(err)
			}
			frametest.DiffFrames(t, want, got)
		}
	})
}

func TestSelectionsMatchOracle(t *testing.T) {
	df := randomFrame(t, 120, 11)
	g, err := df.GroupBy("k1")
	if err != nil {
		t.Fatal(err)
	}
	sg, err := g.Col("v1")
	if err != nil {
		t.Fatal(err)
	}

	in := oracleInput(t, df, []string{"k1"}, true, true)
	v1, err := df.Col("v1")
	if err != nil {
		t.Fatal(err)
	}
	in.Targets = []*frame.Series{v1}
	oracle := reference.New(in)

	t.Run("value counts", func(t *testing.T) {
		for _, tt := range []struct {
			sort, asc, dropNA bool
		}{
			{sort: true, asc: false, dropNA: true},
			{sort: true, asc: true, dropNA: true},
			{sort: false, asc: false, dropNA: false},
		} {
			got, err := sg.ValueCounts(tt.sort, tt.asc, tt.dropNA)
			if err != nil {
				t.Fatal(err)
			}
			want, err := oracle.ValueCounts(tt.sort, tt.asc, tt.dropNA)
			if err != nil {
				t.Fatal(err)
			}
			frametest.DiffSeries(t, want, got)
		}
	})

	t.Run("nsmallest", func(t *testing.T) {
		got, err := sg.NSmallest(3)
		if err != nil {
			t.Fatal(err)
		}
		want, err := oracle.NSmallest(3)
		if err != nil {
			t.Fatal(err)
		}
		frametest.DiffSeries(t, want, got)
	})

	t.Run("nlargest", func(t *testing.T) {
		got, err := sg.NLargest(5)
		if err != nil {
			t.Fatal(err)
		}
		want, err := oracle.NLargest(5)
		if err != nil {
			t.Fatal(err)
		}
		frametest.DiffSeries(t, want, got)
	})

	t.Run("get group", func(t *testing.T) {
		got, err := g.GetGroup("k0")
		if err != nil {
			t.Fatal(err)
		}
		rows, err := oracle.GetGroup(valueList("k0"))
		if err != nil {
			t.Fatal(err)
		}
		frametest.DiffFrames(t, df.Select(rows), got)
	})
}
