package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		vals []string
		want Kind
	}{
		{"integers", []string{"1", "2", "-3"}, KindNumeric},
		{"floats", []string{"29.85", "1889.5", "1e3"}, KindNumeric},
		{"zero one is numeric", []string{"0", "1", "1"}, KindNumeric},
		{"nulls ignored", []string{"1", "<null>", "2"}, KindNumeric},
		{"blanks ignored", []string{"1", " ", "2"}, KindNumeric},
		{"yes no", []string{"Yes", "No", "yes"}, KindBoolean},
		{"true false", []string{"true", "FALSE"}, KindBoolean},
		{"dates", []string{"2024-01-02", "2024-02-03"}, KindDatetime},
		{"timestamps", []string{"2024-01-02 10:11:12", "2024-01-02T10:11:12Z"}, KindDatetime},
		{"mixed", []string{"1", "A"}, KindText},
		{"text", []string{"Month-to-month", "One year"}, KindText},
		{"nan is not a number", []string{"1", "NaN"}, KindText},
		{"all null", []string{"<null>", "<null>"}, KindText},
		{"empty", nil, KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(col("c", tt.vals...).Values))
		})
	}
}

func TestInferKinds(t *testing.T) {
	tbl, err := New("t", []*Column{col("age", "25", "<null>", "25"), col("plan", "A", "A", "A")})
	require.NoError(t, err)

	InferKinds(tbl)

	assert.Equal(t, KindNumeric, tbl.Columns[0].Kind)
	assert.Equal(t, KindText, tbl.Columns[1].Kind)
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindText, KindNumeric, KindBoolean, KindDatetime} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("object")
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	for _, s := range []string{"0", "-5", " 3.5 ", "1E-3"} {
		_, err := ParseNumber(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", " ", "abc", "NaN", "Inf", "-inf", "1,5"} {
		_, err := ParseNumber(s)
		assert.ErrorIs(t, err, ErrNotNumber, s)
	}
}
