package entity

// Kind is the declared category of a field's filter.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindDate    Kind = "date"
	KindBoolean Kind = "boolean"
	KindCustom  Kind = "custom"
)

// Comparable reports whether conditions on the kind carry a Clause value.
func (knd Kind) Comparable() bool {
	return knd == KindString || knd == KindNumber || knd == KindDate
}

// FieldDef describes the filter a field supports.
type FieldDef struct {
	Kind    Kind           `yaml:"kind" json:"kind"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// Schema maps field names to their filter descriptors.
// It is read-only as far as the engine is concerned.
type Schema map[string]FieldDef

// KindOf returns the declared kind of a field, or "" when undeclared.
func (sch Schema) KindOf(field string) Kind {
	return sch[field].Kind
}

// OperatorsFor lists the clause operators legal for a kind.
// Boolean and custom kinds carry no clause, so the list is empty.
func OperatorsFor(knd Kind) []string {

	ordered := []string{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte}

	switch knd {
	case KindNumber, KindDate:
		return ordered
	case KindString:
		return append(ordered, OpContains, OpStartsWith, OpEndsWith)
	}
	return nil
}

// Allows reports whether operator is legal for the declared kind of field.
// Callers wanting strict coverage can check before compiling; the compiler
// itself just skips what it cannot handle.
func (sch Schema) Allows(field, operator string) bool {

	for _, op := range OperatorsFor(sch.KindOf(field)) {
		if op == operator {
			return true
		}
	}
	return false
}
