package entity

// ExpressionInput is a plain nested description of a node, with no ids.
// A node with a field is a condition; anything else is a group. Ids are
// assigned when a tree is hydrated from the input.
type ExpressionInput struct {
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty"`

	Operator Operator          `yaml:"operator,omitempty" json:"operator,omitempty"`
	Children []ExpressionInput `yaml:"children,omitempty" json:"children,omitempty"`
}

// IsGroup reports whether the input describes a group node.
func (in ExpressionInput) IsGroup() bool {
	return in.Field == ""
}

// GroupInput describes a whole tree, rooted at a group.
type GroupInput struct {
	Operator Operator          `yaml:"operator" json:"operator"`
	Children []ExpressionInput `yaml:"children,omitempty" json:"children,omitempty"`
}
