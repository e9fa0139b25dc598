package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSnapshot() *BasketSnapshot {
	camera := ProductLine{ProductID: 1, StoreID: 1, Price: 5.0, Weight: 1.0, Amount: 2}
	lens := ProductLine{ProductID: 2, StoreID: 1, Price: 20.0, Weight: 2.5, Amount: 1}
	beans := ProductLine{ProductID: 3, StoreID: 2, Price: 25.0, Weight: 1.0, Amount: 4}

	return &BasketSnapshot{
		StoreID:  1,
		Products: []ProductLine{camera, lens, beans},
		Categories: []CategoryView{
			{
				CategoryID: 10,
				Name:       "electronics",
				SubCategories: []CategoryView{
					// The camera is reachable via two sibling paths; it must
					// still count once in transitive aggregation.
					{CategoryID: 11, ParentID: 10, Name: "cameras", Products: []ProductLine{camera}},
					{CategoryID: 12, ParentID: 10, Name: "promo", Products: []ProductLine{camera, lens}},
				},
			},
			{CategoryID: 20, Name: "groceries", Products: []ProductLine{beans}},
		},
		TotalPrice:   130.0,
		PurchaseTime: time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC),
		User:         UserView{UserID: 7},
	}
}

func TestHasProduct(t *testing.T) {
	s := testSnapshot()
	require.True(t, s.HasProduct(1, 1))
	require.False(t, s.HasProduct(1, 2))
	require.False(t, s.HasProduct(99, 1))
}

func TestStoreTotals(t *testing.T) {
	s := testSnapshot()
	price, weight, amount := s.StoreTotals(1)
	require.InDelta(t, 30.0, price, 1e-9) // 5*2 + 20*1
	require.InDelta(t, 4.5, weight, 1e-9) // 1*2 + 2.5*1
	require.Equal(t, 3, amount)
}

func TestProductTotals(t *testing.T) {
	s := testSnapshot()
	price, weight, amount := s.ProductTotals(3, 2)
	require.InDelta(t, 100.0, price, 1e-9)
	require.InDelta(t, 4.0, weight, 1e-9)
	require.Equal(t, 4, amount)
}

func TestCategoryLines_TransitiveDeduplicates(t *testing.T) {
	s := testSnapshot()

	direct := s.CategoryLines(10, false)
	require.Empty(t, direct, "membership is explicit, not inherited from sub-categories")

	transitive := s.CategoryLines(10, true)
	require.Len(t, transitive, 2, "camera reachable via two paths counts once")

	price, _, amount := s.CategoryTotals(10, true)
	require.InDelta(t, 30.0, price, 1e-9)
	require.Equal(t, 3, amount)
}

func TestFindCategory(t *testing.T) {
	s := testSnapshot()
	require.NotNil(t, s.FindCategory(12))
	require.Equal(t, "promo", s.FindCategory(12).Name)
	require.Nil(t, s.FindCategory(99))
}
