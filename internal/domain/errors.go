package domain

import "fmt"

// Reason codes shared by the composition and scope error paths. Parse and
// construction errors carry their own codes in their packages.
const (
	CodeUnknownID       = "unknown_id"
	CodeNilChild        = "nil_child"
	CodeTooFewChildren  = "too_few_children"
	CodeStoreMismatch   = "store_mismatch"
	CodeUnknownOperator = "unknown_operator"
	CodeUnknownProduct  = "unknown_product"
	CodeUnknownCategory = "unknown_category"
)

// CompositionError reports an invalid attempt to combine rule nodes:
// referencing a retired or unknown id, too few children for a Max/Additive
// combinator, or an operator the engine does not know.
type CompositionError struct {
	Code   string
	Detail string
}

func (e *CompositionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("composition error: %s", e.Code)
	}
	return fmt.Sprintf("composition error: %s (%s)", e.Code, e.Detail)
}

// ScopeError reports a policy or discount scoped to a product or category
// the store's catalog does not contain.
type ScopeError struct {
	Code     string
	StoreID  int64
	TargetID int64
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scope error: %s (store=%d target=%d)", e.Code, e.StoreID, e.TargetID)
}
