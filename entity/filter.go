package entity

// Operator combines a group's children.
type Operator string

const (
	And Operator = "and"
	Or  Operator = "or"
)

// Valid reports whether op is a known group operator.
func (op Operator) Valid() bool {
	return op == And || op == Or
}

// Expression is a node in a filter tree, either a *Condition leaf or a
// *Group of child expressions.
type Expression interface {
	ID() string
	Clone() Expression
}

// Condition is a leaf expression binding a field to a value.
// The value's shape depends on the field's declared kind: a Clause-shaped
// record for comparable kinds, a bare bool for boolean kind, or anything
// at all for custom kinds.
type Condition struct {
	Id    string
	Field string
	Value any
}

// ID returns the node id.
func (cnd *Condition) ID() string {
	return cnd.Id
}

// Clone copies the condition.
// Values are treated as immutable and copied by reference.
func (cnd *Condition) Clone() Expression {
	return &Condition{
		Id:    cnd.Id,
		Field: cnd.Field,
		Value: cnd.Value,
	}
}

// Group is an expression combining ordered children with an operator.
type Group struct {
	Id       string
	Operator Operator
	Children []Expression
	Root     bool
}

// ID returns the node id.
func (grp *Group) ID() string {
	return grp.Id
}

// Clone deep-copies the group and its subtree.
// A nil children slice stays nil, keeping clones deeply equal to their source.
func (grp *Group) Clone() Expression {
	var children []Expression
	if grp.Children != nil {
		children = make([]Expression, len(grp.Children))
		for i, child := range grp.Children {
			children[i] = child.Clone()
		}
	}

	return &Group{
		Id:       grp.Id,
		Operator: grp.Operator,
		Children: children,
		Root:     grp.Root,
	}
}

// CloneGroup is Clone with the concrete type retained.
func (grp *Group) CloneGroup() *Group {
	return grp.Clone().(*Group)
}
