// Package csv reads and writes frames as comma-separated values.
//
// Reading infers a column type from the values present: a column whose
// non-empty values all parse as integers is an int column, then float,
// then bool, and otherwise string. Empty fields are null.
package csv

import (
	stdcsv "encoding/csv"
	"io"
	"strconv"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// Read decodes a frame from CSV. The first record is the header.
func Read(r io.Reader) (*frame.DataFrame, error) {
	cr := stdcsv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, codes.Invalid, "reading csv")
	}
	if len(records) == 0 {
		return nil, errors.New(codes.Invalid, "missing header record")
	}
	header := records[0]
	rows := records[1:]
	for i, rec := range rows {
		if len(rec) != len(header) {
			return nil, errors.Newf(codes.Invalid, "record %d has %d fields, want %d", i+1, len(rec), len(header))
		}
	}

	series := make([]*frame.Series, len(header))
	for j, name := range header {
		col := make([]string, len(rows))
		for i, rec := range rows {
			col[i] = rec[j]
		}
		typ := inferType(col)
		vs, err := parseColumn(col, typ)
		if err != nil {
			return nil, errors.Wrapf(err, codes.Invalid, "parsing column %s", name)
		}
		s, err := frame.NewSeries(frame.L(name), typ, vs)
		if err != nil {
			return nil, err
		}
		series[j] = s
	}
	return frame.New(series...)
}

func inferType(col []string) keel.ColType {
	typ := keel.TInt
	seen := false
	for _, field := range col {
		if field == "" {
			continue
		}
		seen = true
		switch typ {
		case keel.TInt:
			if _, err := strconv.ParseInt(field, 10, 64); err == nil {
				continue
			}
			typ = keel.TFloat
			fallthrough
		case keel.TFloat:
			if _, err := strconv.ParseFloat(field, 64); err == nil {
				continue
			}
			typ = keel.TBool
			fallthrough
		case keel.TBool:
			if field == "true" || field == "false" {
				continue
			}
			typ = keel.TString
		}
		if typ == keel.TString {
			break
		}
	}
	if !seen {
		return keel.TString
	}
	return typ
}

func parseColumn(col []string, typ keel.ColType) ([]values.Value, error) {
	vs := make([]values.Value, len(col))
	for i, field := range col {
		if field == "" {
			vs[i] = values.Null
			continue
		}
		switch typ {
		case keel.TInt:
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, err
			}
			vs[i] = values.NewInt(v)
		case keel.TFloat:
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			vs[i] = values.NewFloat(v)
		case keel.TBool:
			vs[i] = values.NewBool(field == "true")
		default:
			vs[i] = values.NewString(field)
		}
	}
	return vs, nil
}

// Write encodes the frame as CSV: a header of column labels followed by
// one record per row. Null values are written as empty fields. The row
// index is not written.
func Write(w io.Writer, df *frame.DataFrame) error {
	cw := stdcsv.NewWriter(w)

	header := make([]string, df.NCols())
	for j := 0; j < df.NCols(); j++ {
		header[j] = df.ColAt(j).Name().String()
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, codes.Internal, "writing csv header")
	}

	rec := make([]string, df.NCols())
	for i := 0; i < df.Len(); i++ {
		for j := 0; j < df.NCols(); j++ {
			s := df.ColAt(j)
			if s.IsNull(i) {
				rec[j] = ""
				continue
			}
			rec[j] = formatValue(s.Value(i))
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, codes.Internal, "writing csv record")
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v values.Value) string {
	switch v.Type() {
	case values.TFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case values.TBool:
		return strconv.FormatBool(v.Bool())
	default:
		return v.String()
	}
}
