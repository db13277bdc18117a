package compile

import (
	"fmt"
	"strconv"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	nt "sift/entity"
)

// Expr builds predicates as expr-lang source fragments, for matching
// records in memory without a database. Columns name variables in the
// record environment handed to Match.
type Expr struct{}

var exprOps = map[string]string{
	nt.OpEq:  "==",
	nt.OpNeq: "!=",
	nt.OpGt:  ">",
	nt.OpGte: ">=",
	nt.OpLt:  "<",
	nt.OpLte: "<=",
}

// Where builds a single-variable fragment. Pattern operators map onto
// expr's contains, startsWith, and endsWith string operators.
func (be *Expr) Where(column, operator string, value any) (pred any, ok bool) {

	if op, found := exprOps[operator]; found {
		return fmt.Sprintf("%s %s %s", column, op, literal(value)), true
	}

	switch operator {
	case nt.OpContains, nt.OpStartsWith, nt.OpEndsWith:
		return fmt.Sprintf("%s %s %s", column, operator, literal(value)), true
	}
	return nil, false
}

// Combine joins fragments with "and" or "or", parenthesized.
func (be *Expr) Combine(op nt.Operator, preds []any) (pred any) {

	src := ""
	for _, have := range preds {
		frag, isString := have.(string)
		if !isString {
			continue
		}
		if src != "" {
			src += fmt.Sprintf(" %s ", op)
		}
		src += frag
	}
	return "(" + src + ")"
}

// Program compiles a folded predicate into a runnable program.
func (be *Expr) Program(pred any) (*vm.Program, error) {

	src, isString := pred.(string)
	if !isString {
		return nil, errors.Errorf("expected an expr fragment, got %T", pred)
	}

	prg, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	return prg, errors.Wrapf(err, "failed to compile %q", src)
}

// Match runs a compiled program against one record.
func (be *Expr) Match(prg *vm.Program, rec nt.Record) (matched bool, err error) {

	out, err := vm.Run(prg, map[string]any(rec))
	if err != nil {
		err = errors.Wrapf(err, "failed to run filter program")
		return
	}

	matched, ok := out.(bool)
	if !ok {
		err = errors.Errorf("filter program returned %T, not bool", out)
	}
	return
}

// literal renders a clause value as expr source. Times render as RFC3339
// strings, which compare in time order.
func literal(value any) string {

	switch val := value.(type) {
	case string:
		return strconv.Quote(val)
	case time.Time:
		return strconv.Quote(val.Format(time.RFC3339))
	default:
		return fmt.Sprintf("%v", val)
	}
}
