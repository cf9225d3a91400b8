package execute

import (
	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/internal/errors"
	"github.com/keeldata/keel/values"
)

// GroupKeyBuilder incrementally constructs a group key.
type GroupKeyBuilder struct {
	cols   []keel.ColMeta
	values []values.Value
	err    error
}

// NewGroupKeyBuilder creates a builder seeded with the columns and
// values of an existing key. A nil key starts an empty builder.
func NewGroupKeyBuilder(key keel.GroupKey) *GroupKeyBuilder {
	gkb := &GroupKeyBuilder{}
	if key != nil {
		for j := 0; j < key.NCols(); j++ {
			gkb.cols = append(gkb.cols, key.Col(j))
			gkb.values = append(gkb.values, key.Value(j))
		}
	}
	return gkb
}

// AddKeyValue appends a label/value pair to the key under construction.
// The column type is inferred from the value.
func (gkb *GroupKeyBuilder) AddKeyValue(label string, value values.Value) *GroupKeyBuilder {
	if gkb.err != nil {
		return gkb
	}
	typ := colTypeOf(value.Type())
	if typ == keel.TInvalid {
		gkb.err = errors.Newf(codes.Invalid, "invalid group key value for label %q", label)
		return gkb
	}
	gkb.cols = append(gkb.cols, keel.ColMeta{Label: label, Type: typ})
	gkb.values = append(gkb.values, value)
	return gkb
}

// Len returns the current number of key columns.
func (gkb *GroupKeyBuilder) Len() int {
	return len(gkb.cols)
}

// Build constructs the group key or returns the first error encountered
// while building it.
func (gkb *GroupKeyBuilder) Build() (keel.GroupKey, error) {
	if gkb.err != nil {
		return nil, gkb.err
	}
	return NewGroupKey(gkb.cols, gkb.values), nil
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
	case values.TString:
		return keel.TString
	case values.TTime:
		return keel.TTime
	default:
		return keel.TInvalid
	}
}
