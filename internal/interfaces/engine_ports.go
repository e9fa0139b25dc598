package interfaces

import (
	"context"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/discount"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/policy"
)

// Error types re-exported so callers can match them without importing the
// domain packages.
type (
	CompositionError = domain.CompositionError
	ScopeError       = domain.ScopeError
)

// CatalogView is the slice of the external catalog/store service the engine
// consults when attaching scoped policies and discounts.
type CatalogView interface {
	HasProduct(storeID, productID int64) bool
	HasCategory(categoryID int64) bool
}

// StorePack groups the declarative rules of one store.
type StorePack struct {
	StoreID   int64           `json:"storeId" yaml:"store_id"`
	Policies  []policy.Spec   `json:"policies,omitempty" yaml:"policies,omitempty"`
	Discounts []discount.Spec `json:"discounts,omitempty" yaml:"discounts,omitempty"`
}

// PackDefinition is a versioned set of store rules loaded from disk.
type PackDefinition struct {
	Version     string      `json:"version" yaml:"version"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Stores      []StorePack `json:"stores" yaml:"stores"`
}

// PackLoader defines the contract for loading rule packs (from disk,
// network, etc.).
type PackLoader interface {
	Load(ctx context.Context, version string) (*PackDefinition, error)
}

// MetricsRecorder receives evaluation outcomes; the prometheus adapter in
// infrastructure implements it.
type MetricsRecorder interface {
	PolicyCheck(allowed bool, seconds float64)
	DiscountCalc(total float64, seconds float64)
}

// EngineFacade is the surface exposed to checkout orchestration.
type EngineFacade interface {
	EvaluatePolicies(ctx context.Context, snap *domain.BasketSnapshot) (bool, []uint64)
	EvaluateDiscounts(ctx context.Context, snap *domain.BasketSnapshot) (float64, map[uint64]float64)
	Checkout(ctx context.Context, snap *domain.BasketSnapshot) (*CheckoutSummary, error)

	AddPolicy(storeID int64, sp policy.Spec) (uint64, error)
	AddDiscount(storeID int64, sp discount.Spec) (uint64, error)
	ComposePolicies(op string, leftID, rightID uint64) (uint64, error)
	ComposeDiscounts(op string, ids ...uint64) (uint64, error)
	SetPolicyPredicate(id uint64, predicateText string) (bool, error)
	SetDiscountPredicate(id uint64, predicateText string) (bool, error)
	RemovePolicy(id uint64) bool
	RemoveDiscount(id uint64) bool
	InstallPack(ctx context.Context, pack *PackDefinition) error
}

// CheckoutSummary is the authoritative result handed back to checkout: the
// policy verdict, per-root discount amounts and the totals delta as an
// RFC 7386 merge patch.
type CheckoutSummary struct {
	Allowed         bool               `json:"allowed"`
	FailedPolicies  []uint64           `json:"failedPolicies,omitempty"`
	TotalBefore     float64            `json:"totalBefore"`
	Savings         float64            `json:"savings"`
	TotalAfter      float64            `json:"totalAfter"`
	DiscountAmounts map[uint64]float64 `json:"discountAmounts,omitempty"`
	Delta           []byte             `json:"delta,omitempty"`
}
