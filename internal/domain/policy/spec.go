package policy

import (
	"strings"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
)

// Spec is the declarative form of a policy tree, the shape rule packs and
// the HTTP facade carry.
type Spec struct {
	Type       string `json:"type" yaml:"type"`
	ProductID  int64  `json:"productId,omitempty" yaml:"product_id,omitempty"`
	CategoryID int64  `json:"categoryId,omitempty" yaml:"category_id,omitempty"`
	Predicate  string `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	Children   []Spec `json:"children,omitempty" yaml:"children,omitempty"`
}

// Build turns a spec into a policy tree owned by the given store.
func Build(storeID int64, sp Spec) (PurchasePolicy, error) {
	gate, err := buildGate(sp.Predicate)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(sp.Type) {
	case "basket":
		return NewBasket(storeID, gate), nil
	case "product":
		return NewProduct(storeID, sp.ProductID, gate), nil
	case "category":
		return NewCategory(storeID, sp.CategoryID, gate), nil
	case "and", "or", "conditioning":
		if len(sp.Children) != 2 {
			return nil, &domain.CompositionError{Code: domain.CodeTooFewChildren, Detail: sp.Type + " needs exactly 2 children"}
		}
		left, err := Build(storeID, sp.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := Build(storeID, sp.Children[1])
		if err != nil {
			return nil, err
		}
		return Combine(sp.Type, left, right)
	default:
		return nil, &domain.CompositionError{Code: domain.CodeUnknownOperator, Detail: sp.Type}
	}
}

// Combine builds a composite over already-owned nodes, the operation the
// registry's destructive compose relies on.
func Combine(op string, l, r PurchasePolicy) (PurchasePolicy, error) {
	switch strings.ToLower(op) {
	case "and":
		return NewAnd(l, r)
	case "or":
		return NewOr(l, r)
	case "conditioning", "implies":
		return NewConditioning(l, r)
	default:
		return nil, &domain.CompositionError{Code: domain.CodeUnknownOperator, Detail: op}
	}
}

func buildGate(predicateText string) (constraint.Constraint, error) {
	if predicateText == "" {
		return nil, nil
	}
	return constraint.Parse(predicateText)
}
