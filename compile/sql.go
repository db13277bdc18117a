package compile

import (
	"fmt"
	"strings"

	nt "sift/entity"
)

// Clause is a parameterized SQL predicate fragment.
type Clause struct {
	Text string
	Args []any
}

// SQL builds parameterized WHERE-clause predicates with "?" placeholders,
// which suits duckdb. Per-field handlers used alongside it must also
// return Clause values.
type SQL struct{}

var sqlOps = map[string]string{
	nt.OpEq:  "=",
	nt.OpNeq: "!=",
	nt.OpGt:  ">",
	nt.OpGte: ">=",
	nt.OpLt:  "<",
	nt.OpLte: "<=",
}

// Where builds a single-column clause. Pattern operators become LIKE with
// the match anchored at neither end, the start, or the end.
func (be *SQL) Where(column, operator string, value any) (pred any, ok bool) {

	if op, found := sqlOps[operator]; found {
		return Clause{
			Text: fmt.Sprintf("%s %s ?", column, op),
			Args: []any{value},
		}, true
	}

	var pattern string
	switch operator {
	case nt.OpContains:
		pattern = "%" + fmt.Sprintf("%v", value) + "%"
	case nt.OpStartsWith:
		pattern = fmt.Sprintf("%v", value) + "%"
	case nt.OpEndsWith:
		pattern = "%" + fmt.Sprintf("%v", value)
	default:
		return nil, false
	}

	return Clause{
		Text: column + " LIKE ?",
		Args: []any{pattern},
	}, true
}

// Combine joins clauses with AND or OR, parenthesized.
func (be *SQL) Combine(op nt.Operator, preds []any) (pred any) {

	joiner := " AND "
	if op == nt.Or {
		joiner = " OR "
	}

	texts := make([]string, 0, len(preds))
	args := []any{}
	for _, have := range preds {
		cls, isClause := have.(Clause)
		if !isClause {
			continue
		}
		texts = append(texts, cls.Text)
		args = append(args, cls.Args...)
	}

	if len(texts) == 1 {
		return Clause{Text: texts[0], Args: args}
	}

	return Clause{
		Text: "(" + strings.Join(texts, joiner) + ")",
		Args: args,
	}
}
