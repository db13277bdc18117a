package entity

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Clause operator tags for comparable kinds.
const (
	OpEq         = "eq"
	OpNeq        = "neq"
	OpGt         = "gt"
	OpGte        = "gte"
	OpLt         = "lt"
	OpLte        = "lte"
	OpContains   = "contains"
	OpStartsWith = "startsWith"
	OpEndsWith   = "endsWith"
)

// Clause is the value shape carried by conditions on comparable kinds.
type Clause struct {
	Operator string `yaml:"operator" json:"operator" mapstructure:"operator"`
	Value    any    `yaml:"value" json:"value" mapstructure:"value"`
}

// DecodeClause converts a loosely typed condition value, typically a map
// freshly unmarshalled from yaml or json, into a Clause.
func DecodeClause(value any) (cls Clause, err error) {

	switch val := value.(type) {
	case Clause:
		return val, nil
	case *Clause:
		return *val, nil
	}

	err = mapstructure.Decode(value, &cls)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode clause from %T", value)
		return
	}

	if cls.Operator == "" {
		err = errors.Errorf("clause from %T has no operator", value)
	}
	return
}
