package compile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/compile"
	nt "sift/entity"
)

func TestSQLWhere(t *testing.T) {

	be := &compile.SQL{}

	table := []struct {
		operator string
		value    any
		text     string
		arg      any
	}{
		{nt.OpEq, 18, "age = ?", 18},
		{nt.OpNeq, 18, "age != ?", 18},
		{nt.OpGt, 18, "age > ?", 18},
		{nt.OpGte, 18, "age >= ?", 18},
		{nt.OpLt, 18, "age < ?", 18},
		{nt.OpLte, 18, "age <= ?", 18},
		{nt.OpContains, "pat", "age LIKE ?", "%pat%"},
		{nt.OpStartsWith, "pat", "age LIKE ?", "pat%"},
		{nt.OpEndsWith, "pat", "age LIKE ?", "%pat"},
	}

	for _, have := range table {
		pred, ok := be.Where("age", have.operator, have.value)
		require.True(t, ok, have.operator)

		cls := pred.(compile.Clause)
		assert.Equal(t, have.text, cls.Text, have.operator)
		assert.Equal(t, []any{have.arg}, cls.Args, have.operator)
	}

	_, ok := be.Where("age", "between", 18)
	assert.False(t, ok)
}

func TestSQLCombine(t *testing.T) {

	be := &compile.SQL{}

	a := compile.Clause{Text: "age >= ?", Args: []any{18}}
	b := compile.Clause{Text: "name LIKE ?", Args: []any{"%pat%"}}

	cls := be.Combine(nt.And, []any{a, b}).(compile.Clause)
	assert.Equal(t, "(age >= ? AND name LIKE ?)", cls.Text)
	assert.Equal(t, []any{18, "%pat%"}, cls.Args)

	cls = be.Combine(nt.Or, []any{a, b}).(compile.Clause)
	assert.Equal(t, "(age >= ? OR name LIKE ?)", cls.Text)

	// foreign predicate values are dropped rather than exploded
	cls = be.Combine(nt.And, []any{a, "what even", b}).(compile.Clause)
	assert.Equal(t, "(age >= ? AND name LIKE ?)", cls.Text)
}
