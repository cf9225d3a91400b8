package frame

import (
	"strings"

	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/internal/errors"
)

// MissingKind classifies an intentionally unavailable group-by
// operation.
type MissingKind int

const (
	UnsupportedMethod MissingKind = iota
	UnsupportedProperty
	DeprecatedMethod
	DeprecatedProperty
)

// MissingDataFrameGroupBy registers the DataFrame group-by operations
// that are intentionally not available. Every entry corresponds to a
// stub method on DataFrameGroupBy returning the matching error.
var MissingDataFrameGroupBy = map[string]MissingKind{
	"Boxplot":  UnsupportedMethod,
	"Corr":     UnsupportedMethod,
	"Corrwith": UnsupportedMethod,
	"Cov":      UnsupportedMethod,
	"Hist":     UnsupportedMethod,
	"Ngroup":   UnsupportedMethod,
	"Ohlc":     UnsupportedMethod,
	"Pipe":     UnsupportedMethod,
	"Resample": UnsupportedMethod,
	"Dtypes":   UnsupportedProperty,
	"Plot":     UnsupportedProperty,
	"Backfill": DeprecatedMethod,
	"Mad":      DeprecatedMethod,
	"Pad":      DeprecatedMethod,
	"Tshift":   DeprecatedMethod,
}

// MissingSeriesGroupBy registers the Series group-by operations that
// are intentionally not available.
var MissingSeriesGroupBy = map[string]MissingKind{
	"Corr":        UnsupportedMethod,
	"Cov":         UnsupportedMethod,
	"Hist":        UnsupportedMethod,
	"Ngroup":      UnsupportedMethod,
	"Ohlc":        UnsupportedMethod,
	"Pipe":        UnsupportedMethod,
	"Resample":    UnsupportedMethod,
	"Dtype":       UnsupportedProperty,
	"IsMonotonic": UnsupportedProperty,
	"Plot":        UnsupportedProperty,
	"Backfill":    DeprecatedMethod,
	"Mad":         DeprecatedMethod,
	"Pad":         DeprecatedMethod,
	"Tshift":      DeprecatedMethod,
}

// missingError builds the documented error for a missing operation.
// Operation names render in snake_case, the way callers spell them.
func missingError(kind MissingKind, name string) error {
	word := "method"
	if kind == UnsupportedProperty || kind == DeprecatedProperty {
		word = "property"
	}
	suffix := "is not implemented yet"
	if kind == DeprecatedMethod || kind == DeprecatedProperty {
		suffix = "is deprecated"
	}
	return errors.Newf(codes.Unimplemented, "%s GroupBy.%s %s", word, snakeCase(name), suffix)
}

// snakeCase converts an exported Go name like IsMonotonic into
// is_monotonic.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (g *DataFrameGroupBy) Boxplot() error  { return missingError(UnsupportedMethod, "Boxplot") }
func (g *DataFrameGroupBy) Corr() error     { return missingError(UnsupportedMethod, "Corr") }
func (g *DataFrameGroupBy) Corrwith() error { return missingError(UnsupportedMethod, "Corrwith") }
func (g *DataFrameGroupBy) Cov() error      { return missingError(UnsupportedMethod, "Cov") }
func (g *DataFrameGroupBy) Hist() error     { return missingError(UnsupportedMethod, "Hist") }
func (g *DataFrameGroupBy) Ngroup() error   { return missingError(UnsupportedMethod, "Ngroup") }
func (g *DataFrameGroupBy) Ohlc() error     { return missingError(UnsupportedMethod, "Ohlc") }
func (g *DataFrameGroupBy) Pipe() error     { return missingError(UnsupportedMethod, "Pipe") }
func (g *DataFrameGroupBy) Resample() error { return missingError(UnsupportedMethod, "Resample") }
func (g *DataFrameGroupBy) Dtypes() error   { return missingError(UnsupportedProperty, "Dtypes") }
func (g *DataFrameGroupBy) Plot() error     { return missingError(UnsupportedProperty, "Plot") }
func (g *DataFrameGroupBy) Backfill() error { return missingError(DeprecatedMethod, "Backfill") }
func (g *DataFrameGroupBy) Mad() error      { return missingError(DeprecatedMethod, "Mad") }
func (g *DataFrameGroupBy) Pad() error      { return missingError(DeprecatedMethod, "Pad") }
func (g *DataFrameGroupBy) Tshift() error   { return missingError(DeprecatedMethod, "Tshift") }

func (g *SeriesGroupBy) Corr() error     { return missingError(UnsupportedMethod, "Corr") }
func (g *SeriesGroupBy) Cov() error      { return missingError(UnsupportedMethod, "Cov") }
func (g *SeriesGroupBy) Hist() error     { return missingError(UnsupportedMethod, "Hist") }
func (g *SeriesGroupBy) Ngroup() error   { return missingError(UnsupportedMethod, "Ngroup") }
func (g *SeriesGroupBy) Ohlc() error     { return missingError(UnsupportedMethod, "Ohlc") }
func (g *SeriesGroupBy) Pipe() error     { return missingError(UnsupportedMethod, "Pipe") }
func (g *SeriesGroupBy) Resample() error { return missingError(UnsupportedMethod, "Resample") }
func (g *SeriesGroupBy) Dtype() error    { return missingError(UnsupportedProperty, "Dtype") }
func (g *SeriesGroupBy) IsMonotonic() error {
	return missingError(UnsupportedProperty, "IsMonotonic")
}
func (g *SeriesGroupBy) Plot() error     { return missingError(UnsupportedProperty, "Plot") }
func (g *SeriesGroupBy) Backfill() error { return missingError(DeprecatedMethod, "Backfill") }
func (g *SeriesGroupBy) Mad() error      { return missingError(DeprecatedMethod, "Mad") }
func (g *SeriesGroupBy) Pad() error      { return missingError(DeprecatedMethod, "Pad") }
func (g *SeriesGroupBy) Tshift() error   { return missingError(DeprecatedMethod, "Tshift") }
