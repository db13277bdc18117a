package compile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/compile"
	nt "sift/entity"
)

func exprCompiler() compile.Compiler {
	return compile.Compiler{
		Schema:  schema,
		Columns: columns,
		Backend: &compile.Expr{},
	}
}

func TestExprWhere(t *testing.T) {

	be := &compile.Expr{}

	pred, ok := be.Where("age", nt.OpGte, 18)
	require.True(t, ok)
	assert.Equal(t, "age >= 18", pred)

	pred, ok = be.Where("name", nt.OpStartsWith, "pa")
	require.True(t, ok)
	assert.Equal(t, `name startsWith "pa"`, pred)

	_, ok = be.Where("age", "between", 18)
	assert.False(t, ok)
}

func TestExprCombine(t *testing.T) {

	be := &compile.Expr{}

	pred := be.Combine(nt.Or, []any{"age >= 18", "is_active == true"})
	assert.Equal(t, "(age >= 18 or is_active == true)", pred)
}

func TestExprMatch(t *testing.T) {

	cpl := exprCompiler()
	be := cpl.Backend.(*compile.Expr)

	root := &nt.Group{
		Id:       "root",
		Operator: nt.And,
		Root:     true,
		Children: []nt.Expression{
			&nt.Condition{Id: "c1", Field: "age", Value: nt.Clause{Operator: nt.OpGte, Value: 18}},
			&nt.Condition{Id: "c2", Field: "active", Value: true},
		},
	}

	pred, ok := cpl.Compile(root)
	require.True(t, ok)
	assert.Equal(t, "(age >= 18 and is_active == true)", pred)

	prg, err := be.Program(pred)
	require.NoError(t, err)

	matched, err := be.Match(prg, nt.Record{"age": 30, "is_active": true})
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = be.Match(prg, nt.Record{"age": 12, "is_active": true})
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestExprProgramRefusals(t *testing.T) {

	be := &compile.Expr{}

	_, err := be.Program(42)
	assert.Error(t, err)

	_, err = be.Program("age >=")
	assert.Error(t, err)
}
