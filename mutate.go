package sift

import (
	nt "sift/entity"
)

// Operations validate against the current snapshot before touching anything,
// then transform a working copy and commit it. Parent ids passed as ""
// resolve to the root group.

// AddCondition appends a condition to the parent group and returns its id.
func (st *Store) AddCondition(field string, value any, parentId string) (id string, err error) {

	parentId = st.orRoot(parentId)
	if _, ok := st.ix.group(parentId); !ok {
		err = errNotFound(parentId)
		return
	}

	root, wx := st.working()
	parent, _ := wx.group(parentId)

	cnd := &nt.Condition{
		Id:    newId(),
		Field: field,
		Value: value,
	}
	parent.Children = append(parent.Children, cnd)

	st.commit("addCondition", root, "id", cnd.Id, "field", field)
	return cnd.Id, nil
}

// AddGroup appends an empty group to the parent group and returns its id.
func (st *Store) AddGroup(op nt.Operator, parentId string) (id string, err error) {

	if !op.Valid() {
		err = errInvalid("unknown operator %q", op)
		return
	}

	parentId = st.orRoot(parentId)
	if _, ok := st.ix.group(parentId); !ok {
		err = errNotFound(parentId)
		return
	}

	root, wx := st.working()
	parent, _ := wx.group(parentId)

	grp := &nt.Group{
		Id:       newId(),
		Operator: op,
	}
	parent.Children = append(parent.Children, grp)

	st.commit("addGroup", root, "id", grp.Id, "operator", op)
	return grp.Id, nil
}

// UpdateCondition replaces a condition's value.
func (st *Store) UpdateCondition(id string, value any) (err error) {

	node, ok := st.ix.find(id)
	if !ok {
		return errNotFound(id)
	}
	if _, isGroup := node.(*nt.Group); isGroup {
		return errWrongKind(id, "condition")
	}

	root, wx := st.working()
	cnd, _ := wx.condition(id)
	cnd.Value = value

	st.commit("updateCondition", root, "id", id)
	return nil
}

// SetOperator replaces a group's operator; the root group included.
func (st *Store) SetOperator(id string, op nt.Operator) (err error) {

	if !op.Valid() {
		return errInvalid("unknown operator %q", op)
	}

	node, ok := st.ix.find(id)
	if !ok {
		return errNotFound(id)
	}
	if _, isCondition := node.(*nt.Condition); isCondition {
		return errWrongKind(id, "group")
	}

	root, wx := st.working()
	grp, _ := wx.group(id)
	grp.Operator = op

	st.commit("setOperator", root, "id", id, "operator", op)
	return nil
}

// RemoveFilter removes the subtree rooted at id from its parent.
func (st *Store) RemoveFilter(id string) (err error) {

	if id == st.root.Id {
		return errInvalid("cannot remove the root group")
	}
	if _, ok := st.ix.find(id); !ok {
		return errNotFound(id)
	}

	root, wx := st.working()
	detach(wx, id)

	st.commit("removeFilter", root, "id", id)
	return nil
}

// MoveFilter detaches a node and reinserts it as a child of the target
// group at the given position, clamped to the valid range. Moving a node
// into itself or its own subtree is refused.
func (st *Store) MoveFilter(id, targetGroupId string, pos int) (err error) {

	if id == st.root.Id {
		return errInvalid("cannot move the root group")
	}
	if _, ok := st.ix.find(id); !ok {
		return errNotFound(id)
	}

	target, ok := st.ix.find(targetGroupId)
	if !ok {
		return errNotFound(targetGroupId)
	}
	if _, isGroup := target.(*nt.Group); !isGroup {
		return errInvalid("move target %s is not a group", targetGroupId)
	}
	if targetGroupId == id || st.ix.isDescendant(id, targetGroupId) {
		return errInvalid("cannot move %s into its own subtree", id)
	}

	root, wx := st.working()
	node := detach(wx, id)
	grp, _ := wx.group(targetGroupId)
	grp.Children = insertAt(grp.Children, node, pos)

	st.commit("moveFilter", root, "id", id, "target", targetGroupId, "index", pos)
	return nil
}

// GroupFilters wraps the referenced nodes, in the order given, in a fresh
// group inserted into the parent. An empty id list yields an empty group.
// The parent defaults to the first id's parent, or the root when there are
// no ids. Returns the new group's id.
func (st *Store) GroupFilters(ids []string, op nt.Operator, parentGroupId string) (id string, err error) {

	if !op.Valid() {
		err = errInvalid("unknown operator %q", op)
		return
	}

	seen := map[string]bool{}
	deduped := make([]string, 0, len(ids))
	for _, have := range ids {
		if have == st.root.Id {
			err = errInvalid("cannot group the root group")
			return
		}
		if _, ok := st.ix.find(have); !ok {
			err = errNotFound(have)
			return
		}
		if !seen[have] {
			seen[have] = true
			deduped = append(deduped, have)
		}
	}
	ids = deduped

	if parentGroupId == "" {
		parentGroupId = st.root.Id
		if len(ids) > 0 {
			parentGroupId, _ = st.ix.parentOf(ids[0])
		}
	}
	if _, ok := st.ix.group(parentGroupId); !ok {
		err = errNotFound(parentGroupId)
		return
	}
	for _, have := range ids {
		if parentGroupId == have || st.ix.isDescendant(have, parentGroupId) {
			err = errInvalid("parent %s is inside grouped node %s", parentGroupId, have)
			return
		}
	}

	root, wx := st.working()

	// Remember where the first grouped node sits, so the new group can take
	// its place; otherwise it goes at the end of the parent.
	parent, _ := wx.group(parentGroupId)
	pos := len(parent.Children)
	if len(ids) > 0 {
		if at, ok := positionOf(parent, ids[0]); ok {
			pos = at
		}
	}

	grp := &nt.Group{
		Id:       newId(),
		Operator: op,
		Children: make([]nt.Expression, 0, len(ids)),
	}
	for _, have := range ids {
		grp.Children = append(grp.Children, detach(wx, have))
	}

	parent.Children = insertAt(parent.Children, grp, pos)

	st.commit("groupFilters", root, "id", grp.Id, "operator", op, "count", len(ids))
	return grp.Id, nil
}

// UngroupFilter replaces a group with its children, spliced into its former
// parent at its former position, in original order.
func (st *Store) UngroupFilter(id string) (err error) {

	if id == st.root.Id {
		return errInvalid("cannot ungroup the root group")
	}
	node, ok := st.ix.find(id)
	if !ok {
		return errNotFound(id)
	}
	if _, isGroup := node.(*nt.Group); !isGroup {
		return errInvalid("node %s is not a group", id)
	}

	root, wx := st.working()

	parentId, _ := wx.parentOf(id)
	parent, _ := wx.group(parentId)
	pos, _ := positionOf(parent, id)
	grp, _ := wx.group(id)

	children := append([]nt.Expression{}, parent.Children[:pos]...)
	children = append(children, grp.Children...)
	children = append(children, parent.Children[pos+1:]...)
	parent.Children = children

	st.commit("ungroupFilter", root, "id", id, "count", len(grp.Children))
	return nil
}

// SetFilter replaces the whole tree from an input description; all ids,
// the root's included, are freshly generated.
func (st *Store) SetFilter(in *nt.GroupInput) {

	root := hydrate(in)
	st.commit("setFilter", root, "id", root.Id)
}

// ResetFilter restores the default given at construction, or an empty
// rooted group when none was.
func (st *Store) ResetFilter() {

	root := hydrate(st.def)
	st.commit("resetFilter", root, "id", root.Id)
}

func (st *Store) orRoot(parentId string) string {
	if parentId == "" {
		return st.root.Id
	}
	return parentId
}

// detach splices a node out of its parent in the working copy and keeps the
// working index consistent enough for the remaining operation steps.
func detach(wx index, id string) nt.Expression {

	node := wx.nodes[id]
	parentId := wx.parents[id]
	parent, _ := wx.group(parentId)

	pos, ok := positionOf(parent, id)
	if ok {
		parent.Children = append(parent.Children[:pos], parent.Children[pos+1:]...)
	}
	delete(wx.parents, id)

	return node
}

func positionOf(parent *nt.Group, id string) (int, bool) {

	for i, child := range parent.Children {
		if child.ID() == id {
			return i, true
		}
	}
	return 0, false
}

func insertAt(children []nt.Expression, node nt.Expression, pos int) []nt.Expression {

	if pos < 0 {
		pos = 0
	}
	if pos > len(children) {
		pos = len(children)
	}

	children = append(children, nil)
	copy(children[pos+1:], children[pos:])
	children[pos] = node
	return children
}
