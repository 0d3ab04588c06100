package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(name string, vals ...string) *Column {
	c := &Column{Name: name}
	for _, v := range vals {
		if v == "<null>" {
			c.Values = append(c.Values, Null())
			continue
		}
		c.Values = append(c.Values, Text(v))
	}
	return c
}

func TestNew(t *testing.T) {
	tbl, err := New("churn", []*Column{col("age", "25", "<null>", "25"), col("plan", "A", "A", "A")})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 2, tbl.Width())
	assert.Equal(t, []string{"age", "plan"}, tbl.Names())
	assert.Equal(t, "(3, 2)", tbl.Shape())

	c, ok := tbl.Column("plan")
	require.True(t, ok)
	assert.Equal(t, "plan", c.Name)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)

	row := tbl.Row(1)
	assert.True(t, row[0].Null)
	assert.Equal(t, "A", row[1].Raw)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("x", []*Column{col("a", "1", "2"), col("b", "1")})
	assert.ErrorIs(t, err, ErrRaggedColumns)

	_, err = New("x", []*Column{col("a", "1"), col("a", "2")})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New("x", []*Column{nil})
	assert.Error(t, err)
}

func TestNew_Empty(t *testing.T) {
	tbl, err := New("empty", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, 0, tbl.Width())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Null().Equal(Text("")))
	assert.True(t, Text("a").Equal(Text("a")))
	assert.False(t, Text("a").Equal(Text("A")))
}

func TestColumnNullCountAndFloat(t *testing.T) {
	c := col("charges", "29.85", "<null>", " ", "1e3")
	assert.Equal(t, int64(1), c.NullCount())

	f, ok, err := c.Float(0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 29.85, f, 1e-9)

	_, ok, err = c.Float(1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Float(2)
	assert.ErrorIs(t, err, ErrNotNumber)

	f, _, err = c.Float(3)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, f)
}
