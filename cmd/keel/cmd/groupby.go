package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/csv"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/values"
)

var groupbyFlags struct {
	file    string
	by      []string
	agg     string
	asIndex bool
	dropNA  bool
}

var aggNames = []string{"sum", "count", "mean", "std", "min", "max", "nunique", "all", "any", "size"}

var groupbyCmd = &cobra.Command{
	Use:   "groupby",
	Short: "Group a CSV file and aggregate each group",
	RunE:  runGroupBy,
}

func init() {
	groupbyCmd.Flags().StringVarP(&groupbyFlags.file, "file", "f", "", "input CSV file (defaults to stdin)")
	groupbyCmd.Flags().StringSliceVar(&groupbyFlags.by, "by", nil, "columns to group by")
	groupbyCmd.Flags().StringVar(&groupbyFlags.agg, "agg", "sum", "aggregation to apply: sum, count, mean, std, min, max, nunique, all, any or size")
	groupbyCmd.Flags().BoolVar(&groupbyFlags.asIndex, "as-index", false, "keep the group keys as the result index instead of columns")
	groupbyCmd.Flags().BoolVar(&groupbyFlags.dropNA, "dropna", true, "drop rows whose group key is null")
	rootCmd.AddCommand(groupbyCmd)
}

func runGroupBy(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	if len(groupbyFlags.by) == 0 {
		return errors.New("at least one --by column is required")
	}
	if !keel.ContainsStr(aggNames, strings.ToLower(groupbyFlags.agg)) {
		return errors.Errorf("unknown aggregation %q", groupbyFlags.agg)
	}

	in := os.Stdin
	if groupbyFlags.file != "" {
		f, err := os.Open(groupbyFlags.file)
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in = f
	}
	df, err := csv.Read(in)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}
	logger.Debug("read input",
		zap.Int("rows", df.Len()),
		zap.Int("columns", df.NCols()),
	)

	g, err := df.GroupBy(groupbyFlags.by,
		frame.AsIndex(groupbyFlags.asIndex),
		frame.DropNA(groupbyFlags.dropNA),
	)
	if err != nil {
		return err
	}

	out, err := aggregateGrouped(g)
	if err != nil {
		return err
	}
	logger.Debug("aggregated",
		zap.String("agg", groupbyFlags.agg),
		zap.Int("groups", out.Len()),
	)

	// Size always carries its keys in the index.
	if groupbyFlags.asIndex || strings.EqualFold(groupbyFlags.agg, "size") {
		out = withIndexColumns(out)
	}
	return csv.Write(os.Stdout, out)
}

func aggregateGrouped(g *frame.DataFrameGroupBy) (*frame.DataFrame, error) {
	switch strings.ToLower(groupbyFlags.agg) {
	case "sum":
		return g.Sum()
	case "count":
		return g.Count()
	case "mean":
		return g.Mean()
	case "std":
		return g.Std()
	case "min":
		return g.Min()
	case "max":
		return g.Max()
	case "nunique":
		return g.NUnique(true)
	case "all":
		return g.All(true)
	case "any":
		return g.Any()
	case "size":
		s, err := g.Size()
		if err != nil {
			return nil, err
		}
		vs, err := frame.NewSeries(frame.L("size"), s.Type(), s.Values())
		if err != nil {
			return nil, err
		}
		df, err := frame.New(vs)
		if err != nil {
			return nil, err
		}
		return df.WithIndex(s.Index())
	default:
		return nil, errors.Errorf("unknown aggregation %q", groupbyFlags.agg)
	}
}

// withIndexColumns converts the index levels back into leading columns
// so they survive the CSV encoding.
func withIndexColumns(df *frame.DataFrame) *frame.DataFrame {
	ix := df.Index()
	cols := make([]*frame.Series, 0, ix.NLevels()+df.NCols())
	for level := 0; level < ix.NLevels(); level++ {
		vs := make([]values.Value, ix.Len())
		typ := keel.TString
		for i := range vs {
			vs[i] = ix.Value(level, i)
			if !vs[i].IsNull() {
				typ = colTypeOf(vs[i].Type())
			}
		}
		name := ix.Name(level)
		if name.IsEmpty() {
			name = frame.L("index")
		}
		s, err := frame.NewSeries(name, typ, vs)
		if err != nil {
			return df
		}
		cols = append(cols, s)
	}
	for i := 0; i < df.NCols(); i++ {
		cols = append(cols, df.ColAt(i))
	}
	out, err := frame.New(cols...)
	if err != nil {
		return df
	}
	return out
}

func colTypeOf(t values.Type) keel.ColType {
	switch t {
	case values.TBool:
		return keel.TBool
	case values.TInt:
		return keel.TInt
	case values.TUInt:
		return keel.TUInt
	case values.TFloat:
		return keel.TFloat
	case values.TTime:
		return keel.TTime
	default:
		return keel.TString
	}
}
