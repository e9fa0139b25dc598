package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/discount"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/policy"
	"github.com/Victor-armando18/marketplace-rules/internal/interfaces"
)

// EngineService is the engine facade: it owns the policy and discount
// registries and exposes evaluation plus the mutation entry points. All
// evaluation is pure and lock-free over the snapshot; only registry
// mutation serializes.
type EngineService struct {
	log       zerolog.Logger
	catalog   interfaces.CatalogView
	metrics   interfaces.MetricsRecorder
	policies  *Registry[policy.PurchasePolicy]
	discounts *Registry[discount.Discount]
}

func NewEngineService(catalog interfaces.CatalogView, metrics interfaces.MetricsRecorder, log zerolog.Logger) *EngineService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &EngineService{
		log:       log.With().Str("component", "engine").Logger(),
		catalog:   catalog,
		metrics:   metrics,
		policies:  NewRegistry[policy.PurchasePolicy](),
		discounts: NewRegistry[discount.Discount](),
	}
}

type nopMetrics struct{}

func (nopMetrics) PolicyCheck(bool, float64)     {}
func (nopMetrics) DiscountCalc(float64, float64) {}

// EvaluatePolicies checks every active top-level policy of the snapshot's
// store; all must pass. The ids of failing policies are reported.
func (e *EngineService) EvaluatePolicies(ctx context.Context, snap *domain.BasketSnapshot) (bool, []uint64) {
	start := time.Now()
	var failed []uint64
	for id, p := range e.policies.ActiveFor(snap.StoreID) {
		if !p.CheckConstraint(snap) {
			failed = append(failed, id)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })

	allowed := len(failed) == 0
	e.metrics.PolicyCheck(allowed, time.Since(start).Seconds())
	e.log.Debug().Int64("store", snap.StoreID).Bool("allowed", allowed).Msg("policies evaluated")
	return allowed, failed
}

// EvaluateDiscounts calculates every active top-level discount of the store
// against the original line prices and sums the amounts; the total is
// rounded to cents.
func (e *EngineService) EvaluateDiscounts(ctx context.Context, snap *domain.BasketSnapshot) (float64, map[uint64]float64) {
	start := time.Now()
	amounts := make(map[uint64]float64)
	total := decimal.Zero
	for id, d := range e.discounts.ActiveFor(snap.StoreID) {
		amount := d.Calculate(snap)
		amounts[id] = amount
		total = total.Add(decimal.NewFromFloat(amount))
	}
	savings := total.Round(2).InexactFloat64()
	e.metrics.DiscountCalc(savings, time.Since(start).Seconds())
	e.log.Debug().Int64("store", snap.StoreID).Float64("savings", savings).Msg("discounts evaluated")
	return savings, amounts
}

// Checkout runs the full gate for one basket: policy conjunction first, then
// discount accumulation. The summary carries the totals delta as a merge
// patch so clients can verify what the server changed.
func (e *EngineService) Checkout(ctx context.Context, snap *domain.BasketSnapshot) (*interfaces.CheckoutSummary, error) {
	allowed, failed := e.EvaluatePolicies(ctx, snap)
	summary := &interfaces.CheckoutSummary{
		Allowed:        allowed,
		FailedPolicies: failed,
		TotalBefore:    snap.TotalPrice,
		TotalAfter:     snap.TotalPrice,
	}
	if !allowed {
		return summary, nil
	}

	savings, amounts := e.EvaluateDiscounts(ctx, snap)
	after := decimal.NewFromFloat(snap.TotalPrice).Sub(decimal.NewFromFloat(savings))
	if after.IsNegative() {
		after = decimal.Zero
	}
	summary.Savings = savings
	summary.TotalAfter = after.Round(2).InexactFloat64()
	summary.DiscountAmounts = amounts

	before, _ := json.Marshal(map[string]float64{"total": summary.TotalBefore})
	final, _ := json.Marshal(map[string]float64{"total": summary.TotalAfter, "savings": savings})
	delta, err := jsonpatch.CreateMergePatch(before, final)
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout delta: %w", err)
	}
	summary.Delta = delta
	return summary, nil
}

// AddPolicy validates the scope of a policy spec against the catalog and
// registers the built tree as a top-level policy of the store.
func (e *EngineService) AddPolicy(storeID int64, sp policy.Spec) (uint64, error) {
	if err := e.checkPolicyScope(storeID, sp); err != nil {
		return 0, err
	}
	node, err := policy.Build(storeID, sp)
	if err != nil {
		return 0, err
	}
	id := e.policies.Add(storeID, node)
	e.log.Info().Uint64("id", id).Int64("store", storeID).Str("type", sp.Type).Msg("policy added")
	return id, nil
}

func (e *EngineService) checkPolicyScope(storeID int64, sp policy.Spec) error {
	switch sp.Type {
	case "product":
		if e.catalog != nil && !e.catalog.HasProduct(storeID, sp.ProductID) {
			return &domain.ScopeError{Code: domain.CodeUnknownProduct, StoreID: storeID, TargetID: sp.ProductID}
		}
	case "category":
		if e.catalog != nil && !e.catalog.HasCategory(sp.CategoryID) {
			return &domain.ScopeError{Code: domain.CodeUnknownCategory, StoreID: storeID, TargetID: sp.CategoryID}
		}
	}
	for _, child := range sp.Children {
		if err := e.checkPolicyScope(storeID, child); err != nil {
			return err
		}
	}
	return nil
}

// AddDiscount validates the scope of a discount spec against the catalog and
// registers the built tree as a top-level discount of the store.
func (e *EngineService) AddDiscount(storeID int64, sp discount.Spec) (uint64, error) {
	if err := e.checkDiscountScope(storeID, sp); err != nil {
		return 0, err
	}
	node, err := discount.Build(storeID, sp)
	if err != nil {
		return 0, err
	}
	id := e.discounts.Add(storeID, node)
	e.log.Info().Uint64("id", id).Int64("store", storeID).Str("type", sp.Type).Msg("discount added")
	return id, nil
}

func (e *EngineService) checkDiscountScope(storeID int64, sp discount.Spec) error {
	switch sp.Type {
	case "product":
		if e.catalog != nil && !e.catalog.HasProduct(storeID, sp.ProductID) {
			return &domain.ScopeError{Code: domain.CodeUnknownProduct, StoreID: storeID, TargetID: sp.ProductID}
		}
	case "category":
		if e.catalog != nil && !e.catalog.HasCategory(sp.CategoryID) {
			return &domain.ScopeError{Code: domain.CodeUnknownCategory, StoreID: storeID, TargetID: sp.CategoryID}
		}
	}
	for _, child := range sp.Children {
		if err := e.checkDiscountScope(storeID, child); err != nil {
			return err
		}
	}
	return nil
}

// ComposePolicies combines two active policies into one composite and
// retires the children's ids.
func (e *EngineService) ComposePolicies(op string, leftID, rightID uint64) (uint64, error) {
	id, err := e.policies.Compose([]uint64{leftID, rightID}, func(children []policy.PurchasePolicy) (policy.PurchasePolicy, error) {
		return policy.Combine(op, children[0], children[1])
	})
	if err != nil {
		return 0, err
	}
	e.log.Info().Uint64("id", id).Str("op", op).Uints64("retired", []uint64{leftID, rightID}).Msg("policies composed")
	return id, nil
}

// ComposeDiscounts combines active discounts into one composite and retires
// the children's ids. And/Or/Xor take exactly two ids; Max/Additive take two
// or more.
func (e *EngineService) ComposeDiscounts(op string, ids ...uint64) (uint64, error) {
	id, err := e.discounts.Compose(ids, func(children []discount.Discount) (discount.Discount, error) {
		return discount.Combine(op, children...)
	})
	if err != nil {
		return 0, err
	}
	e.log.Info().Uint64("id", id).Str("op", op).Uints64("retired", ids).Msg("discounts composed")
	return id, nil
}

// SetPolicyPredicate parses the predicate and attaches it to a leaf policy.
// Composites refuse the update; the returned bool reports whether it was
// applied.
func (e *EngineService) SetPolicyPredicate(id uint64, predicateText string) (bool, error) {
	gate, err := constraint.Parse(predicateText)
	if err != nil {
		return false, err
	}
	node, ok := e.policies.Get(id)
	if !ok {
		return false, &domain.CompositionError{Code: domain.CodeUnknownID, Detail: fmt.Sprintf("id %d", id)}
	}
	applied := node.SetPredicate(gate)
	if !applied {
		e.log.Warn().Uint64("id", id).Msg("composite policy refused predicate update")
	}
	return applied, nil
}

// SetDiscountPredicate parses the predicate and attaches it to a leaf
// discount; same refusal semantics as SetPolicyPredicate.
func (e *EngineService) SetDiscountPredicate(id uint64, predicateText string) (bool, error) {
	gate, err := constraint.Parse(predicateText)
	if err != nil {
		return false, err
	}
	node, ok := e.discounts.Get(id)
	if !ok {
		return false, &domain.CompositionError{Code: domain.CodeUnknownID, Detail: fmt.Sprintf("id %d", id)}
	}
	applied := node.SetPredicate(gate)
	if !applied {
		e.log.Warn().Uint64("id", id).Msg("composite discount refused predicate update")
	}
	return applied, nil
}

func (e *EngineService) RemovePolicy(id uint64) bool {
	return e.policies.Remove(id)
}

func (e *EngineService) RemoveDiscount(id uint64) bool {
	return e.discounts.Remove(id)
}

// InstallPack registers every policy and discount of a pack definition.
// Installation aborts on the first invalid spec.
func (e *EngineService) InstallPack(ctx context.Context, pack *interfaces.PackDefinition) error {
	installID := uuid.NewString()
	for _, store := range pack.Stores {
		for _, sp := range store.Policies {
			if _, err := e.AddPolicy(store.StoreID, sp); err != nil {
				return fmt.Errorf("pack %s, store %d: %w", pack.Version, store.StoreID, err)
			}
		}
		for _, sp := range store.Discounts {
			if _, err := e.AddDiscount(store.StoreID, sp); err != nil {
				return fmt.Errorf("pack %s, store %d: %w", pack.Version, store.StoreID, err)
			}
		}
	}
	e.log.Info().Str("install", installID).Str("version", pack.Version).Int("stores", len(pack.Stores)).Msg("pack installed")
	return nil
}
