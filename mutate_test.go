package sift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "sift/entity"
)

func newStore(t *testing.T, in *nt.GroupInput) *Store {
	t.Helper()

	cfg := &Config{Default: in}
	return cfg.New(context.Background(), nil)
}

// ageActive is the canonical two-condition tree: age gte 18 and active.
func ageActive() *nt.GroupInput {
	return &nt.GroupInput{
		Operator: nt.And,
		Children: []nt.ExpressionInput{
			{Field: "age", Value: nt.Clause{Operator: nt.OpGte, Value: 18}},
			{Field: "active", Value: true},
		},
	}
}

func childIds(grp *nt.Group) (ids []string) {
	for _, child := range grp.Children {
		ids = append(ids, child.ID())
	}
	return
}

func collectIds(node nt.Expression, ids map[string]int) {
	ids[node.ID()]++
	if grp, ok := node.(*nt.Group); ok {
		for _, child := range grp.Children {
			collectIds(child, ids)
		}
	}
}

func TestAddCondition(t *testing.T) {

	st := newStore(t, nil)

	id, err := st.AddCondition("age", nt.Clause{Operator: nt.OpGte, Value: 18}, "")
	require.NoError(t, err)

	node, err := st.Find(id)
	require.NoError(t, err)
	cnd := node.(*nt.Condition)
	assert.Equal(t, "age", cnd.Field)

	parentId, err := st.ParentOf(id)
	require.NoError(t, err)
	assert.Equal(t, st.RootID(), parentId)
}

func TestAddConditionToSubgroup(t *testing.T) {

	st := newStore(t, nil)

	grpId, err := st.AddGroup(nt.Or, "")
	require.NoError(t, err)

	cndId, err := st.AddCondition("name", nt.Clause{Operator: nt.OpEq, Value: "pat"}, grpId)
	require.NoError(t, err)

	parentId, err := st.ParentOf(cndId)
	require.NoError(t, err)
	assert.Equal(t, grpId, parentId)
}

func TestAddConditionBadParent(t *testing.T) {

	st := newStore(t, ageActive())
	before := st.Snapshot()

	_, err := st.AddCondition("age", true, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	// a condition is not a valid parent either
	cndId := st.Snapshot().Children[0].ID()
	_, err = st.AddCondition("age", true, cndId)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Same(t, before, st.Snapshot())
}

func TestAddGroupBadOperator(t *testing.T) {

	st := newStore(t, nil)

	_, err := st.AddGroup("xor", "")
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestUpdateCondition(t *testing.T) {

	st := newStore(t, ageActive())
	cndId := st.Snapshot().Children[0].ID()

	err := st.UpdateCondition(cndId, nt.Clause{Operator: nt.OpLt, Value: 65})
	require.NoError(t, err)

	node, err := st.Find(cndId)
	require.NoError(t, err)
	assert.Equal(t, nt.Clause{Operator: nt.OpLt, Value: 65}, node.(*nt.Condition).Value)

	err = st.UpdateCondition("nope", true)
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.UpdateCondition(st.RootID(), true)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestSetOperator(t *testing.T) {

	st := newStore(t, ageActive())

	err := st.SetOperator(st.RootID(), nt.Or)
	require.NoError(t, err)
	assert.Equal(t, nt.Or, st.Snapshot().Operator)

	err = st.SetOperator("nope", nt.And)
	assert.ErrorIs(t, err, ErrNotFound)

	cndId := st.Snapshot().Children[0].ID()
	err = st.SetOperator(cndId, nt.And)
	assert.ErrorIs(t, err, ErrWrongKind)

	err = st.SetOperator(st.RootID(), "nand")
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestRemoveFilter(t *testing.T) {

	st := newStore(t, ageActive())
	ageId := st.Snapshot().Children[0].ID()
	activeId := st.Snapshot().Children[1].ID()

	err := st.RemoveFilter(ageId)
	require.NoError(t, err)

	assert.Equal(t, []string{activeId}, childIds(st.Snapshot()))
	_, err = st.Find(ageId)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFilterRefusals(t *testing.T) {

	st := newStore(t, ageActive())
	before := st.Snapshot()

	err := st.RemoveFilter(st.RootID())
	assert.ErrorIs(t, err, ErrInvalidOperation)

	err = st.RemoveFilter("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Same(t, before, st.Snapshot())
}

func TestMoveFilter(t *testing.T) {

	// root(and): [c1, g1(or): [c2], g2(or): [c3]]
	st := newStore(t, nil)
	c1, _ := st.AddCondition("age", true, "")
	g1, _ := st.AddGroup(nt.Or, "")
	c2, _ := st.AddCondition("name", true, g1)
	g2, _ := st.AddGroup(nt.Or, "")
	c3, _ := st.AddCondition("active", true, g2)

	err := st.MoveFilter(c2, g2, 0)
	require.NoError(t, err)

	grp1, _ := st.Find(g1)
	assert.Empty(t, grp1.(*nt.Group).Children)

	grp2, _ := st.Find(g2)
	assert.Equal(t, []string{c2, c3}, childIds(grp2.(*nt.Group)))

	// index clamps to the valid range
	err = st.MoveFilter(c1, g2, 99)
	require.NoError(t, err)
	grp2, _ = st.Find(g2)
	assert.Equal(t, []string{c2, c3, c1}, childIds(grp2.(*nt.Group)))
}

func TestMoveFilterWithinGroup(t *testing.T) {

	st := newStore(t, nil)
	c1, _ := st.AddCondition("a", true, "")
	c2, _ := st.AddCondition("b", true, "")
	c3, _ := st.AddCondition("c", true, "")

	err := st.MoveFilter(c3, st.RootID(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{c3, c1, c2}, childIds(st.Snapshot()))
}

func TestMoveFilterRefusals(t *testing.T) {

	// root(and): [g1(and): [g2(and): []], c1]
	st := newStore(t, nil)
	g1, _ := st.AddGroup(nt.And, "")
	g2, _ := st.AddGroup(nt.And, g1)
	c1, _ := st.AddCondition("age", true, "")
	before := st.Snapshot()

	err := st.MoveFilter(st.RootID(), g1, 0)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	err = st.MoveFilter(g1, g1, 0)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	// no cycles: g2 descends from g1
	err = st.MoveFilter(g1, g2, 0)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	// conditions cannot take children
	err = st.MoveFilter(g1, c1, 0)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	err = st.MoveFilter("nope", g1, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Same(t, before, st.Snapshot())
}

func TestGroupFilters(t *testing.T) {

	st := newStore(t, ageActive())
	ageId := st.Snapshot().Children[0].ID()
	activeId := st.Snapshot().Children[1].ID()

	grpId, err := st.GroupFilters([]string{ageId, activeId}, nt.Or, "")
	require.NoError(t, err)

	// the new group is the sole remaining root child
	assert.Equal(t, []string{grpId}, childIds(st.Snapshot()))

	node, err := st.Find(grpId)
	require.NoError(t, err)
	grp := node.(*nt.Group)
	assert.Equal(t, nt.Or, grp.Operator)
	assert.Equal(t, []string{ageId, activeId}, childIds(grp))
}

func TestGroupFiltersEmpty(t *testing.T) {

	st := newStore(t, nil)

	grpId, err := st.GroupFilters(nil, nt.And, "")
	require.NoError(t, err)

	node, err := st.Find(grpId)
	require.NoError(t, err)
	assert.Empty(t, node.(*nt.Group).Children)
}

func TestGroupFiltersRefusals(t *testing.T) {

	st := newStore(t, nil)
	g1, _ := st.AddGroup(nt.And, "")
	c1, _ := st.AddCondition("age", true, g1)
	before := st.Snapshot()

	_, err := st.GroupFilters([]string{st.RootID()}, nt.And, "")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = st.GroupFilters([]string{"nope"}, nt.And, "")
	assert.ErrorIs(t, err, ErrNotFound)

	// parent inside a grouped node forms a cycle
	_, err = st.GroupFilters([]string{g1}, nt.And, g1)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = st.GroupFilters([]string{c1, g1}, nt.And, g1)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	assert.Same(t, before, st.Snapshot())
}

func TestGroupThenUngroupRoundTrip(t *testing.T) {

	st := newStore(t, nil)
	c1, _ := st.AddCondition("a", true, "")
	c2, _ := st.AddCondition("b", true, "")
	c3, _ := st.AddCondition("c", true, "")

	grpId, err := st.GroupFilters([]string{c1, c2}, nt.Or, "")
	require.NoError(t, err)
	assert.Equal(t, []string{grpId, c3}, childIds(st.Snapshot()))

	err = st.UngroupFilter(grpId)
	require.NoError(t, err)

	// original ids back under the original parent, in original order
	assert.Equal(t, []string{c1, c2, c3}, childIds(st.Snapshot()))
}

func TestUngroupFilterRefusals(t *testing.T) {

	st := newStore(t, ageActive())
	cndId := st.Snapshot().Children[0].ID()

	err := st.UngroupFilter(st.RootID())
	assert.ErrorIs(t, err, ErrInvalidOperation)

	err = st.UngroupFilter(cndId)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	err = st.UngroupFilter("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetFilter(t *testing.T) {

	st := newStore(t, ageActive())
	oldRootId := st.RootID()

	st.SetFilter(&nt.GroupInput{
		Operator: nt.Or,
		Children: []nt.ExpressionInput{
			{Field: "name", Value: nt.Clause{Operator: nt.OpEq, Value: "pat"}},
		},
	})

	assert.NotEqual(t, oldRootId, st.RootID())
	assert.Equal(t, nt.Or, st.Snapshot().Operator)
	assert.Len(t, st.Snapshot().Children, 1)
}

func TestResetFilter(t *testing.T) {

	st := newStore(t, ageActive())
	_, err := st.AddCondition("name", true, "")
	require.NoError(t, err)
	require.Len(t, st.Snapshot().Children, 3)

	st.ResetFilter()
	assert.Len(t, st.Snapshot().Children, 2)
	assert.Equal(t, nt.And, st.Snapshot().Operator)

	// without a default, reset yields an empty rooted group
	st = newStore(t, nil)
	_, err = st.AddCondition("age", true, "")
	require.NoError(t, err)

	st.ResetFilter()
	assert.Empty(t, st.Snapshot().Children)
	assert.True(t, st.Snapshot().Root)
}

func TestSnapshotsAreImmutable(t *testing.T) {

	st := newStore(t, ageActive())
	before := st.Snapshot()

	_, err := st.AddCondition("name", true, "")
	require.NoError(t, err)

	// the old snapshot still describes the old tree
	assert.Len(t, before.Children, 2)
	assert.Len(t, st.Snapshot().Children, 3)
	assert.NotSame(t, before, st.Snapshot())
}

func TestIdsStayUnique(t *testing.T) {

	st := newStore(t, ageActive())

	g1, err := st.AddGroup(nt.Or, "")
	require.NoError(t, err)
	_, err = st.AddCondition("name", nt.Clause{Operator: nt.OpContains, Value: "a"}, g1)
	require.NoError(t, err)

	ageId := st.Snapshot().Children[0].ID()
	require.NoError(t, st.MoveFilter(ageId, g1, 0))

	_, err = st.GroupFilters([]string{g1}, nt.And, "")
	require.NoError(t, err)

	ids := map[string]int{}
	collectIds(st.Snapshot(), ids)
	for id, n := range ids {
		assert.Equal(t, 1, n, "id %s appears %d times", id, n)
	}
}
