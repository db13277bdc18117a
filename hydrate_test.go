package sift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "sift/entity"
)

func TestHydrate(t *testing.T) {

	root := hydrate(&nt.GroupInput{
		Operator: nt.Or,
		Children: []nt.ExpressionInput{
			{Field: "age", Value: nt.Clause{Operator: nt.OpGte, Value: 18}},
			{Operator: nt.And, Children: []nt.ExpressionInput{
				{Field: "active", Value: true},
			}},
		},
	})

	assert.True(t, root.Root)
	assert.Equal(t, nt.Or, root.Operator)
	require.Len(t, root.Children, 2)

	cnd := root.Children[0].(*nt.Condition)
	assert.Equal(t, "age", cnd.Field)
	assert.NotEmpty(t, cnd.Id)

	grp := root.Children[1].(*nt.Group)
	assert.False(t, grp.Root)
	require.Len(t, grp.Children, 1)

	ids := map[string]int{}
	collectIds(root, ids)
	assert.Len(t, ids, 4)
}

func TestHydrateDefaults(t *testing.T) {

	root := hydrate(nil)
	assert.True(t, root.Root)
	assert.Equal(t, nt.And, root.Operator)
	assert.Empty(t, root.Children)

	// unknown operators default to "and"
	root = hydrate(&nt.GroupInput{Operator: "nand"})
	assert.Equal(t, nt.And, root.Operator)
}

func TestDehydrateRoundTrip(t *testing.T) {

	in := &nt.GroupInput{
		Operator: nt.And,
		Children: []nt.ExpressionInput{
			{Field: "name", Value: nt.Clause{Operator: nt.OpContains, Value: "pat"}},
			{Operator: nt.Or, Children: []nt.ExpressionInput{
				{Field: "age", Value: nt.Clause{Operator: nt.OpLt, Value: 65}},
				{Field: "active", Value: false},
			}},
		},
	}

	first := hydrate(in)
	second := hydrate(dehydrate(first))

	// same shape, fresh ids
	assert.Equal(t, dehydrate(first), dehydrate(second))
	assert.NotEqual(t, first.Id, second.Id)
}
