package sift

import (
	nt "sift/entity"
)

// index is the per-snapshot lookup table, id to node and id to parent id.
// It is rebuilt on every commit and never leaves the store.
type index struct {
	nodes   map[string]nt.Expression
	parents map[string]string
}

// buildIndex walks a tree depth-first, pre-order, children in stored order.
func buildIndex(root *nt.Group) index {

	ix := index{
		nodes:   map[string]nt.Expression{},
		parents: map[string]string{},
	}
	ix.visit(root, "")
	return ix
}

func (ix index) visit(node nt.Expression, parentId string) {

	ix.nodes[node.ID()] = node
	if parentId != "" {
		ix.parents[node.ID()] = parentId
	}

	grp, ok := node.(*nt.Group)
	if !ok {
		return
	}
	for _, child := range grp.Children {
		ix.visit(child, grp.Id)
	}
}

func (ix index) find(id string) (nt.Expression, bool) {
	node, ok := ix.nodes[id]
	return node, ok
}

func (ix index) group(id string) (*nt.Group, bool) {
	grp, ok := ix.nodes[id].(*nt.Group)
	return grp, ok
}

func (ix index) condition(id string) (*nt.Condition, bool) {
	cnd, ok := ix.nodes[id].(*nt.Condition)
	return cnd, ok
}

// parentOf returns the parent group id; the root has none.
func (ix index) parentOf(id string) (string, bool) {
	parentId, ok := ix.parents[id]
	return parentId, ok
}

// isDescendant reports whether id sits somewhere below ancestorId, walking
// parent pointers upward. A node is not its own descendant.
func (ix index) isDescendant(ancestorId, id string) bool {

	for {
		parentId, ok := ix.parents[id]
		if !ok {
			return false
		}
		if parentId == ancestorId {
			return true
		}
		id = parentId
	}
}
