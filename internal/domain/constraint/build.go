package constraint

import (
	"fmt"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/predicate"
)

// Parse builds a validated constraint tree straight from the textual
// predicate wire format.
func Parse(input string) (Constraint, error) {
	expr, err := predicate.ParseString(input)
	if err != nil {
		return nil, err
	}
	return FromExpression(expr)
}

// FromExpression adapts a generic parsed expression into the constraint
// domain. Leaf arity and argument types are validated here, after parsing.
func FromExpression(e *predicate.Expression) (Constraint, error) {
	if e == nil {
		return nil, &ConstructionError{Code: CodeMissingOperand}
	}

	if e.IsComposite() {
		left, err := FromExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := FromExpression(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case "and":
			return NewAnd(left, right)
		case "or":
			return NewOr(left, right)
		case "xor":
			return NewXor(left, right)
		default:
			return NewImplies(left, right)
		}
	}

	args := argReader{op: e.Op, args: e.Args}
	switch e.Op {
	case "age":
		c, err := args.take(1)
		if err != nil {
			return nil, err
		}
		return c.done(NewAge(c.intAt(0)))
	case "location":
		c, err := args.take(5)
		if err != nil {
			return nil, err
		}
		return c.done(NewLocation(domain.Address{
			Street:  c.stringAt(0),
			City:    c.stringAt(1),
			State:   c.stringAt(2),
			Country: c.stringAt(3),
			Zip:     c.stringAt(4),
		}))
	case "time":
		c, err := args.take(4)
		if err != nil {
			return nil, err
		}
		return c.done(NewTimeOfDay(c.intAt(0), c.intAt(1), c.intAt(2), c.intAt(3)))
	case "monthday":
		c, err := args.take(2)
		if err != nil {
			return nil, err
		}
		return c.done(NewDayOfMonth(c.intAt(0), c.intAt(1)))
	case "weekday":
		c, err := args.take(2)
		if err != nil {
			return nil, err
		}
		return c.done(NewDayOfWeek(c.intAt(0), c.intAt(1)))
	case "season":
		c, err := args.take(1)
		if err != nil {
			return nil, err
		}
		return c.done(NewSeason(c.stringAt(0)))
	case "holiday":
		c, err := args.take(1)
		if err != nil {
			return nil, err
		}
		return c.done(NewHolidays(c.stringAt(0)))
	case "price-basket":
		c, err := args.take(3)
		if err != nil {
			return nil, err
		}
		return c.done(NewPriceBasket(c.floatAt(0), c.floatAt(1), c.idAt(2)))
	case "price-product":
		c, err := args.take(4)
		if err != nil {
			return nil, err
		}
		return c.done(NewPriceProduct(c.floatAt(0), c.floatAt(1), c.idAt(2), c.idAt(3)))
	case "price-category":
		c, err := args.take(3)
		if err != nil {
			return nil, err
		}
		return c.done(NewPriceCategory(c.floatAt(0), c.floatAt(1), c.idAt(2)))
	case "weight-basket":
		c, err := args.take(3)
		if err != nil {
			return nil, err
		}
		return c.done(NewWeightBasket(c.floatAt(0), c.floatAt(1), c.idAt(2)))
	case "weight-product":
		c, err := args.take(4)
		if err != nil {
			return nil, err
		}
		return c.done(NewWeightProduct(c.floatAt(0), c.floatAt(1), c.idAt(2), c.idAt(3)))
	case "weight-category":
		c, err := args.take(3)
		if err != nil {
			return nil, err
		}
		return c.done(NewWeightCategory(c.floatAt(0), c.floatAt(1), c.idAt(2)))
	case "amount-basket":
		c, err := args.take(3)
		if err != nil {
			return nil, err
		}
		return c.done(NewAmountBasket(c.intAt(0), c.intAt(1), c.idAt(2)))
	case "amount-product":
		c, err := args.take(4)
		if err != nil {
			return nil, err
		}
		return c.done(NewAmountProduct(c.intAt(0), c.intAt(1), c.idAt(2), c.idAt(3)))
	case "amount-category":
		c, err := args.take(3)
		if err != nil {
			return nil, err
		}
		return c.done(NewAmountCategory(c.intAt(0), c.intAt(1), c.idAt(2)))
	default:
		return nil, &ConstructionError{Code: CodeBadArgument, Detail: e.Op}
	}
}

// argReader validates arity once, then offers typed positional accessors.
// Accessors are lenient across int/float because the parser coerces by
// token shape, not by the leaf's expectation; any other type is recorded
// and done surfaces it as a bad_argument error before the node escapes.
type argReader struct {
	op   string
	args []any
}

type checkedArgs struct {
	op   string
	args []any
	bad  string
}

func (r argReader) take(n int) (*checkedArgs, error) {
	if len(r.args) != n {
		return nil, &ConstructionError{
			Code:   CodeBadArity,
			Detail: fmt.Sprintf("%s expects %d arguments, got %d", r.op, n, len(r.args)),
		}
	}
	return &checkedArgs{op: r.op, args: r.args}, nil
}

// done finishes a leaf construction: a recorded bad argument outranks
// whatever the constructor made of the zero values the accessors fell
// back to.
func (c *checkedArgs) done(node Constraint, err error) (Constraint, error) {
	if c.bad != "" {
		return nil, &ConstructionError{Code: CodeBadArgument, Detail: fmt.Sprintf("%s: %s", c.op, c.bad)}
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (c *checkedArgs) fail(i int) {
	if c.bad == "" {
		c.bad = fmt.Sprintf("argument %d (%v)", i+1, c.args[i])
	}
}

func (c *checkedArgs) intAt(i int) int {
	switch v := c.args[i].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	c.fail(i)
	return 0
}

func (c *checkedArgs) floatAt(i int) float64 {
	switch v := c.args[i].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	c.fail(i)
	return 0
}

func (c *checkedArgs) idAt(i int) int64 {
	switch v := c.args[i].(type) {
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	c.fail(i)
	return 0
}

func (c *checkedArgs) stringAt(i int) string {
	if s, ok := c.args[i].(string); ok {
		return s
	}
	return fmt.Sprint(c.args[i])
}
