package discount

import (
	"strings"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
)

// Spec is the declarative form of a discount tree, the shape rule packs and
// the HTTP facade carry. Predicate holds the textual wire format; Children
// is filled for combinators.
type Spec struct {
	Type          string  `json:"type" yaml:"type"`
	Description   string  `json:"description,omitempty" yaml:"description,omitempty"`
	StoreID       int64   `json:"storeId,omitempty" yaml:"store_id,omitempty"`
	ProductID     int64   `json:"productId,omitempty" yaml:"product_id,omitempty"`
	CategoryID    int64   `json:"categoryId,omitempty" yaml:"category_id,omitempty"`
	Subcategories bool    `json:"subcategories,omitempty" yaml:"subcategories,omitempty"`
	Percentage    float64 `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	Predicate     string  `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	Children      []Spec  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Build turns a spec into a validated discount tree. Leaves scoped to a
// store default to the owning store when the spec leaves StoreID zero.
func Build(storeID int64, sp Spec) (Discount, error) {
	gate, err := buildGate(sp.Predicate)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(sp.Type) {
	case "product":
		return NewProduct(sp.Description, sp.ProductID, orDefault(sp.StoreID, storeID), sp.Percentage, gate)
	case "store":
		return NewStore(sp.Description, orDefault(sp.StoreID, storeID), sp.Percentage, gate)
	case "category":
		return NewCategory(sp.Description, sp.CategoryID, sp.Subcategories, sp.Percentage, gate)
	case "and", "or", "xor":
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
		switch strings.ToLower(sp.Type) {
		case "and":
			return NewAnd(left, right)
		case "or":
			return NewOr(left, right)
		default:
			return NewXor(left, right)
		}
	case "max", "additive":
		children := make([]Discount, 0, len(sp.Children))
		for _, c := range sp.Children {
			child, err := Build(storeID, c)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if strings.ToLower(sp.Type) == "max" {
			return NewMax(children...)
		}
		return NewAdditive(children...)
	default:
		return nil, &domain.CompositionError{Code: domain.CodeUnknownOperator, Detail: sp.Type}
	}
}

// Combine builds a composite over already-owned nodes, the operation the
// registry's destructive compose relies on.
func Combine(op string, children ...Discount) (Discount, error) {
	switch strings.ToLower(op) {
	case "and", "or", "xor":
		if len(children) != 2 {
			return nil, &domain.CompositionError{Code: domain.CodeTooFewChildren, Detail: op + " needs exactly 2 children"}
		}
		switch strings.ToLower(op) {
		case "and":
			return NewAnd(children[0], children[1])
		case "or":
			return NewOr(children[0], children[1])
		default:
			return NewXor(children[0], children[1])
		}
	case "max":
		return NewMax(children...)
	case "additive":
		return NewAdditive(children...)
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

func orDefault(v, fallback int64) int64 {
	if v != 0 {
		return v
	}
	return fallback
}
