// Package discount holds the discount tree: percentage-off leaves scoped to
// a product, a store or a category, and the boolean/numeric combinators that
// compose them. Calculate returns a monetary amount against the original
// line prices; discounts never stack multiplicatively.
package discount

import (
	"fmt"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
)

// Discount computes the amount a basket is entitled to. SetPredicate swaps
// the gating constraint of a leaf and reports whether it was applied;
// composites have absorbed their children and refuse it as a no-op.
type Discount interface {
	Calculate(s *domain.BasketSnapshot) float64
	SetPredicate(c constraint.Constraint) bool

	// gateOpen reports whether the node's own gating constraint passes;
	// inScope whether the node's underlying scope matches the snapshot.
	// Or selects on gates, Xor selects on scopes.
	gateOpen(s *domain.BasketSnapshot) bool
	inScope(s *domain.BasketSnapshot) bool
}

const (
	CodeBadPercentage = "percentage_out_of_range"
)

// ConstructionError reports an invalid leaf discount argument.
type ConstructionError struct {
	Code   string
	Detail string
}

func (e *ConstructionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("discount construction error: %s", e.Code)
	}
	return fmt.Sprintf("discount construction error: %s (%s)", e.Code, e.Detail)
}

func checkPercentage(p float64) error {
	if p < 0 || p > 1 {
		return &ConstructionError{Code: CodeBadPercentage, Detail: fmt.Sprintf("%v", p)}
	}
	return nil
}

// --- Leaves ---

// ProductDiscount takes a percentage off every basket line of one product of
// one store, optionally gated by a constraint.
type ProductDiscount struct {
	Description string
	ProductID   int64
	StoreID     int64
	percentage  float64
	gate        constraint.Constraint
}

func NewProduct(description string, productID, storeID int64, percentage float64, gate constraint.Constraint) (*ProductDiscount, error) {
	if err := checkPercentage(percentage); err != nil {
		return nil, err
	}
	return &ProductDiscount{Description: description, ProductID: productID, StoreID: storeID, percentage: percentage, gate: gate}, nil
}

func (d *ProductDiscount) Percentage() float64 { return d.percentage }

func (d *ProductDiscount) SetPercentage(p float64) error {
	if err := checkPercentage(p); err != nil {
		return err
	}
	d.percentage = p
	return nil
}

func (d *ProductDiscount) SetPredicate(c constraint.Constraint) bool {
	d.gate = c
	return true
}

func (d *ProductDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	if !d.gateOpen(s) {
		return 0
	}
	var total float64
	for _, p := range s.Products {
		if p.ProductID == d.ProductID && p.StoreID == d.StoreID {
			total += p.Price * float64(p.Amount) * d.percentage
		}
	}
	return total
}

func (d *ProductDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	return d.gate == nil || d.gate.IsSatisfied(s)
}

func (d *ProductDiscount) inScope(s *domain.BasketSnapshot) bool {
	return s.HasProduct(d.ProductID, d.StoreID)
}

// StoreDiscount takes a percentage off every line of one store.
type StoreDiscount struct {
	Description string
	StoreID     int64
	percentage  float64
	gate        constraint.Constraint
}

func NewStore(description string, storeID int64, percentage float64, gate constraint.Constraint) (*StoreDiscount, error) {
	if err := checkPercentage(percentage); err != nil {
		return nil, err
	}
	return &StoreDiscount{Description: description, StoreID: storeID, percentage: percentage, gate: gate}, nil
}

func (d *StoreDiscount) Percentage() float64 { return d.percentage }

func (d *StoreDiscount) SetPercentage(p float64) error {
	if err := checkPercentage(p); err != nil {
		return err
	}
	d.percentage = p
	return nil
}

func (d *StoreDiscount) SetPredicate(c constraint.Constraint) bool {
	d.gate = c
	return true
}

func (d *StoreDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	if !d.gateOpen(s) {
		return 0
	}
	price, _, _ := s.StoreTotals(d.StoreID)
	return price * d.percentage
}

func (d *StoreDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	return d.gate == nil || d.gate.IsSatisfied(s)
}

func (d *StoreDiscount) inScope(s *domain.BasketSnapshot) bool {
	for _, p := range s.Products {
		if p.StoreID == d.StoreID && p.Amount > 0 {
			return true
		}
	}
	return false
}

// CategoryDiscount takes a percentage off every line attributed to one
// category; Subcategories extends the scope to the whole subtree.
type CategoryDiscount struct {
	Description   string
	CategoryID    int64
	Subcategories bool
	percentage    float64
	gate          constraint.Constraint
}

func NewCategory(description string, categoryID int64, subcategories bool, percentage float64, gate constraint.Constraint) (*CategoryDiscount, error) {
	if err := checkPercentage(percentage); err != nil {
		return nil, err
	}
	return &CategoryDiscount{Description: description, CategoryID: categoryID, Subcategories: subcategories, percentage: percentage, gate: gate}, nil
}

func (d *CategoryDiscount) Percentage() float64 { return d.percentage }

func (d *CategoryDiscount) SetPercentage(p float64) error {
	if err := checkPercentage(p); err != nil {
		return err
	}
	d.percentage = p
	return nil
}

func (d *CategoryDiscount) SetPredicate(c constraint.Constraint) bool {
	d.gate = c
	return true
}

func (d *CategoryDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	if !d.gateOpen(s) {
		return 0
	}
	var total float64
	for _, p := range s.CategoryLines(d.CategoryID, d.Subcategories) {
		total += p.Price * float64(p.Amount) * d.percentage
	}
	return total
}

func (d *CategoryDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	return d.gate == nil || d.gate.IsSatisfied(s)
}

func (d *CategoryDiscount) inScope(s *domain.BasketSnapshot) bool {
	return len(s.CategoryLines(d.CategoryID, d.Subcategories)) > 0
}

// --- Combinators ---

func checkPair(l, r Discount) error {
	if l == nil || r == nil {
		return &domain.CompositionError{Code: domain.CodeNilChild}
	}
	return nil
}

// AndDiscount contributes both sides; each side still answers to its own
// gating constraint.
type AndDiscount struct{ left, right Discount }

func NewAnd(l, r Discount) (*AndDiscount, error) {
	if err := checkPair(l, r); err != nil {
		return nil, err
	}
	return &AndDiscount{left: l, right: r}, nil
}

func (d *AndDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	return d.left.Calculate(s) + d.right.Calculate(s)
}

func (d *AndDiscount) SetPredicate(constraint.Constraint) bool { return false }

func (d *AndDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	return d.left.gateOpen(s) && d.right.gateOpen(s)
}

func (d *AndDiscount) inScope(s *domain.BasketSnapshot) bool {
	return d.left.inScope(s) || d.right.inScope(s)
}

// OrDiscount contributes the first side whose gate passes: left if left's
// gate is open, else right if right's gate is open, else nothing. This
// mirrors leaf gating, not a numeric max.
type OrDiscount struct{ left, right Discount }

func NewOr(l, r Discount) (*OrDiscount, error) {
	if err := checkPair(l, r); err != nil {
		return nil, err
	}
	return &OrDiscount{left: l, right: r}, nil
}

func (d *OrDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	if d.left.gateOpen(s) {
		return d.left.Calculate(s)
	}
	if d.right.gateOpen(s) {
		return d.right.Calculate(s)
	}
	return 0
}

func (d *OrDiscount) SetPredicate(constraint.Constraint) bool { return false }

func (d *OrDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	return d.left.gateOpen(s) || d.right.gateOpen(s)
}

func (d *OrDiscount) inScope(s *domain.BasketSnapshot) bool {
	return d.left.inScope(s) || d.right.inScope(s)
}

// XorDiscount contributes exactly one side, selected by whose scope actually
// matches the snapshot. Left applicability is evaluated first, so left wins
// when both or neither match.
type XorDiscount struct{ left, right Discount }

func NewXor(l, r Discount) (*XorDiscount, error) {
	if err := checkPair(l, r); err != nil {
		return nil, err
	}
	return &XorDiscount{left: l, right: r}, nil
}

func (d *XorDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	if d.right.inScope(s) && !d.left.inScope(s) {
		return d.right.Calculate(s)
	}
	return d.left.Calculate(s)
}

func (d *XorDiscount) SetPredicate(constraint.Constraint) bool { return false }

func (d *XorDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	return d.left.gateOpen(s) != d.right.gateOpen(s)
}

func (d *XorDiscount) inScope(s *domain.BasketSnapshot) bool {
	return d.left.inScope(s) || d.right.inScope(s)
}

func checkChildren(children []Discount) error {
	if len(children) < 2 {
		return &domain.CompositionError{Code: domain.CodeTooFewChildren, Detail: fmt.Sprintf("got %d, need at least 2", len(children))}
	}
	for _, c := range children {
		if c == nil {
			return &domain.CompositionError{Code: domain.CodeNilChild}
		}
	}
	return nil
}

// MaxDiscount contributes the largest child amount.
type MaxDiscount struct{ children []Discount }

func NewMax(children ...Discount) (*MaxDiscount, error) {
	if err := checkChildren(children); err != nil {
		return nil, err
	}
	return &MaxDiscount{children: children}, nil
}

func (d *MaxDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	var best float64
	for _, c := range d.children {
		if amount := c.Calculate(s); amount > best {
			best = amount
		}
	}
	return best
}

func (d *MaxDiscount) SetPredicate(constraint.Constraint) bool { return false }

func (d *MaxDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	for _, c := range d.children {
		if c.gateOpen(s) {
			return true
		}
	}
	return false
}

func (d *MaxDiscount) inScope(s *domain.BasketSnapshot) bool {
	for _, c := range d.children {
		if c.inScope(s) {
			return true
		}
	}
	return false
}

// AdditiveDiscount contributes the sum of all children.
type AdditiveDiscount struct{ children []Discount }

func NewAdditive(children ...Discount) (*AdditiveDiscount, error) {
	if err := checkChildren(children); err != nil {
		return nil, err
	}
	return &AdditiveDiscount{children: children}, nil
}

func (d *AdditiveDiscount) Calculate(s *domain.BasketSnapshot) float64 {
	var total float64
	for _, c := range d.children {
		total += c.Calculate(s)
	}
	return total
}

func (d *AdditiveDiscount) SetPredicate(constraint.Constraint) bool { return false }

func (d *AdditiveDiscount) gateOpen(s *domain.BasketSnapshot) bool {
	for _, c := range d.children {
		if c.gateOpen(s) {
			return true
		}
	}
	return false
}

func (d *AdditiveDiscount) inScope(s *domain.BasketSnapshot) bool {
	for _, c := range d.children {
		if c.inScope(s) {
			return true
		}
	}
	return false
}
