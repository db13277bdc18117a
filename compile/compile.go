// Package compile folds a filter tree into a single backend predicate.
// Predicates are opaque to the compiler: leaves come from per-field
// handlers or from a Backend's Where, and groups are combined through the
// Backend's Combine. Conditions nobody can handle are skipped, not failed,
// so partial handler coverage still yields a usable predicate.
package compile

import (
	nt "sift/entity"
)

// Handler converts a condition's value into a predicate for one field.
// Returning ok false skips the condition.
type Handler func(value any) (pred any, ok bool)

// Backend supplies the predicate constructs of a query target.
type Backend interface {
	// Where builds a single-column predicate; ok false skips it.
	Where(column, operator string, value any) (pred any, ok bool)
	// Combine joins two or more predicates with a group operator.
	Combine(op nt.Operator, preds []any) (pred any)
}

// Compiler turns filter trees into predicates. Handlers win over built-in
// kind handling, which in turn needs the field's kind declared in Schema
// and its column mapped in Columns.
type Compiler struct {
	Schema   nt.Schema
	Columns  map[string]string
	Handlers map[string]Handler
	Backend  Backend
}

// Compile folds a group, typically the tree root, into one predicate.
// ok false means the tree yields no predicate at all: match everything.
// A group with a single surviving child collapses to that child's
// predicate, never a one-term combination.
func (cpl *Compiler) Compile(grp *nt.Group) (pred any, ok bool) {

	preds := make([]any, 0, len(grp.Children))
	for _, child := range grp.Children {
		if have, handled := cpl.compileNode(child); handled {
			preds = append(preds, have)
		}
	}

	switch len(preds) {
	case 0:
		return nil, false
	case 1:
		return preds[0], true
	}
	return cpl.Backend.Combine(grp.Operator, preds), true
}

func (cpl *Compiler) compileNode(node nt.Expression) (any, bool) {

	switch have := node.(type) {
	case *nt.Group:
		return cpl.Compile(have)
	case *nt.Condition:
		return cpl.compileCondition(have)
	}
	return nil, false
}

func (cpl *Compiler) compileCondition(cnd *nt.Condition) (any, bool) {

	if hnd, found := cpl.Handlers[cnd.Field]; found {
		return hnd(cnd.Value)
	}

	column, mapped := cpl.Columns[cnd.Field]
	if !mapped || cpl.Backend == nil {
		return nil, false
	}

	knd := cpl.Schema.KindOf(cnd.Field)
	switch {
	case knd == nt.KindBoolean:
		val, isBool := cnd.Value.(bool)
		if !isBool {
			return nil, false
		}
		return cpl.Backend.Where(column, nt.OpEq, val)

	case knd.Comparable():
		cls, err := nt.DecodeClause(cnd.Value)
		if err != nil {
			return nil, false
		}
		if !cpl.Schema.Allows(cnd.Field, cls.Operator) {
			return nil, false
		}
		return cpl.Backend.Where(column, cls.Operator, cls.Value)
	}

	// custom kinds need an explicit handler
	return nil, false
}
