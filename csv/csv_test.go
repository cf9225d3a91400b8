package csv_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keeldata/keel"
	"github.com/keeldata/keel/codes"
	"github.com/keeldata/keel/csv"
	"github.com/keeldata/keel/frame"
	"github.com/keeldata/keel/internal/errors"
)

func TestRead(t *testing.T) {
	in := strings.Join([]string{
		"id,score,name,ok",
		"1,1.5,alice,true",
		"2,,bob,false",
		",2.25,carol,true",
	}, "\n")

	df, err := csv.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, df.Len())
	require.Equal(t, 4, df.NCols())

	id, err := df.Col("id")
	require.NoError(t, err)
	assert.Equal(t, keel.TInt, id.Type())
	assert.Equal(t, int64(1), id.Value(0).Int())
	assert.True(t, id.IsNull(2))

	score, err := df.Col("score")
	require.NoError(t, err)
	assert.Equal(t, keel.TFloat, score.Type())
	assert.True(t, score.IsNull(1))
	assert.Equal(t, 2.25, score.Value(2).Float())

	name, err := df.Col("name")
	require.NoError(t, err)
	assert.Equal(t, keel.TString, name.Type())

	ok, err := df.Col("ok")
	require.NoError(t, err)
	assert.Equal(t, keel.TBool, ok.Type())
	assert.False(t, ok.Value(1).Bool())
}

func TestRead_TypeWidening(t *testing.T) {
	// A single non-integer value widens the whole column.
	in := "v\n1\n2.5\n3\n"
	df, err := csv.Read(strings.NewReader(in))
	require.NoError(t, err)
	v, err := df.Col("v")
	require.NoError(t, err)
	assert.Equal(t, keel.TFloat, v.Type())
	assert.Equal(t, 1.0, v.Value(0).Float())
}

func TestRead_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := csv.Read(strings.NewReader(""))
		require.Error(t, err)
		assert.Equal(t, codes.Invalid, errors.Code(err))
	})

	t.Run("ragged record", func(t *testing.T) {
		_, err := csv.Read(strings.NewReader("a,b\n1\n"))
		require.Error(t, err)
		assert.Equal(t, codes.Invalid, errors.Code(err))
	})
}

func TestRoundTrip(t *testing.T) {
	in := "k,v\na,1\nb,\na,3\n"
	df, err := csv.Read(strings.NewReader(in))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, csv.Write(&buf, df))
	assert.Equal(t, in, buf.String())
}

func TestWrite_Floats(t *testing.T) {
	df, err := frame.New(frame.Floats("v", 0.5, 10))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, csv.Write(&buf, df))
	assert.Equal(t, "v\n0.5\n10\n", buf.String())
}
