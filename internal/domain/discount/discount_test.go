package discount

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
)

func testSnapshot() *domain.BasketSnapshot {
	camera := domain.ProductLine{ProductID: 1, StoreID: 1, Price: 10.0, Weight: 0.5, Amount: 5}
	beans := domain.ProductLine{ProductID: 9, StoreID: 2, Price: 40.0, Weight: 1.0, Amount: 1}

	return &domain.BasketSnapshot{
		StoreID:  1,
		Products: []domain.ProductLine{camera, beans},
		Categories: []domain.CategoryView{
			{CategoryID: 11, Name: "cameras", Products: []domain.ProductLine{camera}},
		},
		TotalPrice:   90.0,
		PurchaseTime: time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC),
		User:         domain.UserView{UserID: 7}, // guest, fails any age gate
	}
}

// closedGate returns a constraint the test snapshot never satisfies.
func closedGate(t *testing.T) constraint.Constraint {
	t.Helper()
	c, err := constraint.NewAge(18)
	require.NoError(t, err)
	return c
}

func TestLeafCalculate(t *testing.T) {
	s := testSnapshot()

	t.Run("product percentage over price times amount", func(t *testing.T) {
		d, err := NewProduct("camera promo", 1, 1, 0.10, nil)
		require.NoError(t, err)
		require.InDelta(t, 5.0, d.Calculate(s), 1e-9) // 10 * 5 * 0.10
	})

	t.Run("store covers every line of that store", func(t *testing.T) {
		d, err := NewStore("store two sale", 2, 0.20, nil)
		require.NoError(t, err)
		require.InDelta(t, 8.0, d.Calculate(s), 1e-9) // 40 * 1 * 0.20
	})

	t.Run("category covers attributed lines", func(t *testing.T) {
		d, err := NewCategory("camera week", 11, false, 0.50, nil)
		require.NoError(t, err)
		require.InDelta(t, 25.0, d.Calculate(s), 1e-9)
	})

	t.Run("closed gate yields zero", func(t *testing.T) {
		d, _ := NewProduct("gated", 1, 1, 0.10, closedGate(t))
		require.Zero(t, d.Calculate(s))
	})

	t.Run("absent scope yields zero", func(t *testing.T) {
		d, _ := NewProduct("not in basket", 99, 1, 0.10, nil)
		require.Zero(t, d.Calculate(s))
	})
}

func TestPercentageValidation(t *testing.T) {
	for _, p := range []float64{-0.1, 1.01, 2} {
		_, err := NewProduct("bad", 1, 1, p, nil)
		var cerr *ConstructionError
		require.True(t, errors.As(err, &cerr))
		require.Equal(t, CodeBadPercentage, cerr.Code)
	}

	d, err := NewStore("ok", 1, 0.5, nil)
	require.NoError(t, err)
	require.Error(t, d.SetPercentage(1.5))
	require.NoError(t, d.SetPercentage(1.0))
	require.InDelta(t, 1.0, d.Percentage(), 1e-9)
}

func TestAndDiscount_SumsBothSides(t *testing.T) {
	s := testSnapshot()
	product, _ := NewProduct("camera promo", 1, 1, 0.10, nil)
	store, _ := NewStore("store two sale", 2, 0.20, nil)

	and, err := NewAnd(product, store)
	require.NoError(t, err)
	require.InDelta(t, 13.0, and.Calculate(s), 1e-9)

	gated, _ := NewProduct("gated", 1, 1, 0.10, closedGate(t))
	and, _ = NewAnd(gated, store)
	require.InDelta(t, 8.0, and.Calculate(s), 1e-9, "each side answers to its own gate")
}

func TestOrDiscount_FirstOpenGateWins(t *testing.T) {
	s := testSnapshot()
	left, _ := NewProduct("camera promo", 1, 1, 0.10, nil) // 5.0
	right, _ := NewStore("store two sale", 2, 0.20, nil)   // 8.0
	closedL, _ := NewProduct("gated", 1, 1, 0.10, closedGate(t))
	closedR, _ := NewStore("gated", 2, 0.20, closedGate(t))

	or, err := NewOr(left, right)
	require.NoError(t, err)
	require.InDelta(t, 5.0, or.Calculate(s), 1e-9, "left's open gate wins even when right pays more")

	or, _ = NewOr(closedL, right)
	require.InDelta(t, 8.0, or.Calculate(s), 1e-9)

	or, _ = NewOr(closedL, closedR)
	require.Zero(t, or.Calculate(s))
}

func TestXorDiscount_SelectsByScope(t *testing.T) {
	s := testSnapshot()
	inBasket, _ := NewProduct("camera promo", 1, 1, 0.10, nil) // 5.0
	alsoIn, _ := NewStore("store two sale", 2, 0.20, nil)      // 8.0
	notIn, _ := NewProduct("absent", 99, 1, 0.50, nil)

	xor, err := NewXor(notIn, alsoIn)
	require.NoError(t, err)
	require.InDelta(t, 8.0, xor.Calculate(s), 1e-9, "right selected when only right is in scope")

	xor, _ = NewXor(inBasket, alsoIn)
	require.InDelta(t, 5.0, xor.Calculate(s), 1e-9, "left wins when both sides are in scope")

	xor, _ = NewXor(notIn, notIn)
	require.Zero(t, xor.Calculate(s))
}

func TestMaxAndAdditive(t *testing.T) {
	s := testSnapshot()
	product, _ := NewProduct("camera promo", 1, 1, 0.10, nil)       // 5.0
	store, _ := NewStore("store two sale", 2, 0.20, nil)            // 8.0
	category, _ := NewCategory("camera week", 11, false, 0.02, nil) // 1.0

	max, err := NewMax(product, store, category)
	require.NoError(t, err)
	require.InDelta(t, 8.0, max.Calculate(s), 1e-9)

	additive, err := NewAdditive(product, store, category)
	require.NoError(t, err)
	require.InDelta(t, 14.0, additive.Calculate(s), 1e-9)
}

func TestCompositionErrors(t *testing.T) {
	product, _ := NewProduct("p", 1, 1, 0.10, nil)

	t.Run("nil child", func(t *testing.T) {
		_, err := NewAnd(product, nil)
		requireComposition(t, err, domain.CodeNilChild)
		_, err = NewMax(product, nil)
		requireComposition(t, err, domain.CodeNilChild)
	})

	t.Run("too few children", func(t *testing.T) {
		_, err := NewMax(product)
		requireComposition(t, err, domain.CodeTooFewChildren)
		_, err = NewAdditive()
		requireComposition(t, err, domain.CodeTooFewChildren)
	})
}

func TestSetPredicate(t *testing.T) {
	s := testSnapshot()

	leaf, _ := NewProduct("camera promo", 1, 1, 0.10, closedGate(t))
	require.Zero(t, leaf.Calculate(s))
	require.True(t, leaf.SetPredicate(nil), "leaves accept a predicate swap")
	require.InDelta(t, 5.0, leaf.Calculate(s), 1e-9)

	other, _ := NewStore("store two sale", 2, 0.20, nil)
	for _, composite := range []Discount{
		mustAnd(t, leaf, other),
		mustOr(t, leaf, other),
		mustXor(t, leaf, other),
	} {
		require.False(t, composite.SetPredicate(nil), "composites refuse the swap")
	}
}

func mustAnd(t *testing.T, l, r Discount) Discount {
	t.Helper()
	d, err := NewAnd(l, r)
	require.NoError(t, err)
	return d
}

func mustOr(t *testing.T, l, r Discount) Discount {
	t.Helper()
	d, err := NewOr(l, r)
	require.NoError(t, err)
	return d
}

func mustXor(t *testing.T, l, r Discount) Discount {
	t.Helper()
	d, err := NewXor(l, r)
	require.NoError(t, err)
	return d
}

func requireComposition(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var cerr *domain.CompositionError
	require.True(t, errors.As(err, &cerr), "expected CompositionError, got %T", err)
	require.Equal(t, code, cerr.Code)
}
