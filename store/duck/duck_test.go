package duck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/marcboeker/go-duckdb"

	nt "sift/entity"
)

func testSchema() nt.Schema {
	return nt.Schema{
		"name":   {Kind: nt.KindString},
		"age":    {Kind: nt.KindNumber},
		"active": {Kind: nt.KindBoolean},
		"joined": {Kind: nt.KindDate},
	}
}

func testColumns() map[string]string {
	return map[string]string{
		"name":   "name",
		"age":    "age",
		"active": "is_active",
		"joined": "joined",
	}
}

func newDuck(t *testing.T) *Duck {
	dk, err := New(&nt.NopLogger{}, testSchema(), testColumns())
	require.NoError(t, err)
	t.Cleanup(dk.Close)

	err = dk.Load("testdata/events.ndjson")
	require.NoError(t, err)
	return dk
}

func TestLoadAndCount(t *testing.T) {
	dk := newDuck(t)
	assert.Equal(t, "testdata/events.ndjson", dk.Name())

	fields, count, err := dk.GetView()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, []nt.Field{
		{Name: "is_active", Type: "BOOLEAN"},
		{Name: "age", Type: "DOUBLE"},
		{Name: "joined", Type: "TIMESTAMP"},
		{Name: "name", Type: "VARCHAR"},
	}, fields)
}

func TestSetView(t *testing.T) {
	dk := newDuck(t)

	root := &nt.Group{
		Id:       "root",
		Operator: nt.And,
		Root:     true,
		Children: []nt.Expression{
			&nt.Condition{Id: "c1", Field: "age", Value: nt.Clause{Operator: nt.OpGte, Value: 18}},
			&nt.Condition{Id: "c2", Field: "active", Value: true},
		},
	}

	err := dk.SetView(root)
	require.NoError(t, err)

	_, count, err := dk.GetView()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// back to matching everything
	err = dk.SetView(nil)
	require.NoError(t, err)

	_, count, err = dk.GetView()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestSetViewContains(t *testing.T) {
	dk := newDuck(t)

	root := &nt.Group{
		Id:       "root",
		Operator: nt.And,
		Root:     true,
		Children: []nt.Expression{
			&nt.Condition{Id: "c1", Field: "name", Value: nt.Clause{Operator: nt.OpContains, Value: "pat"}},
		},
	}

	err := dk.SetView(root)
	require.NoError(t, err)

	_, count, err := dk.GetView()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetPage(t *testing.T) {
	dk := newDuck(t)

	lines, err := dk.GetPage(0, 2)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].Id)
	assert.Equal(t, "2", lines[1].Id)

	lines, err = dk.GetPage(4, 2)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "5", lines[0].Id)
}
