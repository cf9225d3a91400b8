package frame_test

import (
	"github.com/keeldata/keel/values"
)

func intValues(vs ...int64) []values.Value {
	out := make([]values.Value, len(vs))
	for i, v := range vs {
		out[i] = values.NewInt(v)
	}
	return out
}

func strValues(vs ...string) []values.Value {
	out := make([]values.Value, len(vs))
	for i, v := range vs {
		out[i] = values.NewString(v)
	}
	return out
}

// valueList builds a value slice where nil stands for null.
func valueList(vs ...interface{}) []values.Value {
	out := make([]values.Value, len(vs))
	for i, v := range vs {
		if v == nil {
			out[i] = values.Null
			continue
		}
		out[i] = values.New(v)
	}
	return out
}
