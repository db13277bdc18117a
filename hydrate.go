package sift

import (
	"github.com/google/uuid"

	nt "sift/entity"
)

func newId() string {
	return uuid.NewString()
}

// hydrate builds a rooted tree from an input description, assigning fresh
// ids depth-first. A nil input yields an empty "and" root. Inputs with a
// missing or unknown operator default to "and".
func hydrate(in *nt.GroupInput) *nt.Group {

	if in == nil {
		in = &nt.GroupInput{Operator: nt.And}
	}

	return &nt.Group{
		Id:       newId(),
		Operator: orAnd(in.Operator),
		Children: hydrateChildren(in.Children),
		Root:     true,
	}
}

func hydrateChildren(ins []nt.ExpressionInput) []nt.Expression {

	children := make([]nt.Expression, 0, len(ins))
	for _, in := range ins {
		children = append(children, hydrateNode(in))
	}
	return children
}

func hydrateNode(in nt.ExpressionInput) nt.Expression {

	if !in.IsGroup() {
		return &nt.Condition{
			Id:    newId(),
			Field: in.Field,
			Value: in.Value,
		}
	}

	return &nt.Group{
		Id:       newId(),
		Operator: orAnd(in.Operator),
		Children: hydrateChildren(in.Children),
	}
}

func orAnd(op nt.Operator) nt.Operator {
	if !op.Valid() {
		return nt.And
	}
	return op
}

// dehydrate flattens a tree back to an id-less input description, suitable
// for persisting and rehydrating later.
func dehydrate(root *nt.Group) *nt.GroupInput {

	return &nt.GroupInput{
		Operator: root.Operator,
		Children: dehydrateChildren(root.Children),
	}
}

func dehydrateChildren(children []nt.Expression) []nt.ExpressionInput {

	if len(children) == 0 {
		return nil
	}

	ins := make([]nt.ExpressionInput, 0, len(children))
	for _, child := range children {
		switch node := child.(type) {
		case *nt.Condition:
			ins = append(ins, nt.ExpressionInput{
				Field: node.Field,
				Value: node.Value,
			})
		case *nt.Group:
			ins = append(ins, nt.ExpressionInput{
				Operator: node.Operator,
				Children: dehydrateChildren(node.Children),
			})
		}
	}
	return ins
}
