// Package policy holds the purchase-policy tree: constraint-carrying leaves
// scoped to the whole basket, one category or one product, plus the
// And/Or/Conditioning combinators. A store's checkout gate is the
// conjunction of its active top-level policies.
package policy

import (
	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
)

// PurchasePolicy decides whether a basket may be purchased. SetPredicate
// swaps the constraint of a leaf and reports whether it was applied;
// composites have absorbed their children and refuse it as a no-op.
type PurchasePolicy interface {
	CheckConstraint(s *domain.BasketSnapshot) bool
	SetPredicate(c constraint.Constraint) bool
}

// BasketPolicy applies its constraint to the whole basket. A policy of
// another store trivially passes, as does one with no constraint.
type BasketPolicy struct {
	StoreID int64
	gate    constraint.Constraint
}

func NewBasket(storeID int64, gate constraint.Constraint) *BasketPolicy {
	return &BasketPolicy{StoreID: storeID, gate: gate}
}

func (p *BasketPolicy) CheckConstraint(s *domain.BasketSnapshot) bool {
	if p.StoreID != s.StoreID || p.gate == nil {
		return true
	}
	return p.gate.IsSatisfied(s)
}

func (p *BasketPolicy) SetPredicate(c constraint.Constraint) bool {
	p.gate = c
	return true
}

// ProductPolicy applies only when the basket contains the scoped product;
// otherwise the policy does not apply and passes.
type ProductPolicy struct {
	StoreID   int64
	ProductID int64
	gate      constraint.Constraint
}

func NewProduct(storeID, productID int64, gate constraint.Constraint) *ProductPolicy {
	return &ProductPolicy{StoreID: storeID, ProductID: productID, gate: gate}
}

func (p *ProductPolicy) CheckConstraint(s *domain.BasketSnapshot) bool {
	if p.StoreID != s.StoreID {
		return true
	}
	if !s.HasProduct(p.ProductID, p.StoreID) {
		return true
	}
	if p.gate == nil {
		return true
	}
	return p.gate.IsSatisfied(s)
}

func (p *ProductPolicy) SetPredicate(c constraint.Constraint) bool {
	p.gate = c
	return true
}

// CategoryPolicy applies only when the basket holds at least one product
// under the scoped category (sub-categories included).
type CategoryPolicy struct {
	StoreID    int64
	CategoryID int64
	gate       constraint.Constraint
}

func NewCategory(storeID, categoryID int64, gate constraint.Constraint) *CategoryPolicy {
	return &CategoryPolicy{StoreID: storeID, CategoryID: categoryID, gate: gate}
}

func (p *CategoryPolicy) CheckConstraint(s *domain.BasketSnapshot) bool {
	if p.StoreID != s.StoreID {
		return true
	}
	if len(s.CategoryLines(p.CategoryID, true)) == 0 {
		return true
	}
	if p.gate == nil {
		return true
	}
	return p.gate.IsSatisfied(s)
}

func (p *CategoryPolicy) SetPredicate(c constraint.Constraint) bool {
	p.gate = c
	return true
}

// --- Combinators ---

func checkPair(l, r PurchasePolicy) error {
	if l == nil || r == nil {
		return &domain.CompositionError{Code: domain.CodeNilChild}
	}
	return nil
}

type AndPolicy struct{ left, right PurchasePolicy }

func NewAnd(l, r PurchasePolicy) (*AndPolicy, error) {
	if err := checkPair(l, r); err != nil {
		return nil, err
	}
	return &AndPolicy{left: l, right: r}, nil
}

func (p *AndPolicy) CheckConstraint(s *domain.BasketSnapshot) bool {
	return p.left.CheckConstraint(s) && p.right.CheckConstraint(s)
}

func (p *AndPolicy) SetPredicate(constraint.Constraint) bool { return false }

type OrPolicy struct{ left, right PurchasePolicy }

func NewOr(l, r PurchasePolicy) (*OrPolicy, error) {
	if err := checkPair(l, r); err != nil {
		return nil, err
	}
	return &OrPolicy{left: l, right: r}, nil
}

func (p *OrPolicy) CheckConstraint(s *domain.BasketSnapshot) bool {
	return p.left.CheckConstraint(s) || p.right.CheckConstraint(s)
}

func (p *OrPolicy) SetPredicate(constraint.Constraint) bool { return false }

// ConditioningPolicy is the implication combinator: when the left side
// passes the right side must pass too; a failing left side passes vacuously.
type ConditioningPolicy struct{ left, right PurchasePolicy }

func NewConditioning(l, r PurchasePolicy) (*ConditioningPolicy, error) {
	if err := checkPair(l, r); err != nil {
		return nil, err
	}
	return &ConditioningPolicy{left: l, right: r}, nil
}

func (p *ConditioningPolicy) CheckConstraint(s *domain.BasketSnapshot) bool {
	return !p.left.CheckConstraint(s) || p.right.CheckConstraint(s)
}

func (p *ConditioningPolicy) SetPredicate(constraint.Constraint) bool { return false }
