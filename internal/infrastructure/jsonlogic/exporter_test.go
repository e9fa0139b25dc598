package jsonlogic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
)

func testSnapshot() *domain.BasketSnapshot {
	birthdate := time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)
	wine := domain.ProductLine{ProductID: 200, StoreID: 1, Price: 30.0, Weight: 1.3, Amount: 2}

	return &domain.BasketSnapshot{
		StoreID:  1,
		Products: []domain.ProductLine{wine},
		Categories: []domain.CategoryView{
			{CategoryID: 20, Name: "alcohol", Products: []domain.ProductLine{wine}},
		},
		TotalPrice:   60.0,
		PurchaseTime: time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC),
		User: domain.UserView{
			UserID:    7,
			Birthdate: &birthdate,
			Address:   &domain.Address{Street: "Independencia", City: "Luanda", State: "LU", Country: "AO", Zip: "1000"},
		},
	}
}

func TestExport_PrecomputesFacts(t *testing.T) {
	snap := testSnapshot()

	c, err := constraint.Parse("and (age 18) (price-basket 10 -1 1)")
	require.NoError(t, err)

	rule, data, err := Export(c, snap)
	require.NoError(t, err)
	require.NotNil(t, rule)
	require.Equal(t, 36, data["age"])
	require.InDelta(t, 60.0, data["priceBasket_1"].(float64), 1e-9)
}

func TestCrossCheck_AgreesWithNativeEvaluation(t *testing.T) {
	snap := testSnapshot()

	predicates := []string{
		"age 18",
		"age 99",
		"location {street: Independencia, city: Luanda, state: LU, country: AO, zip: 1000}",
		"time 10 00 20 00",
		"time 15 00 20 00",
		"monthday 25 31",
		"weekday 7 7",
		"weekday 2 6",
		"season summer",
		"season winter",
		"holiday AO",
		"price-basket 10 -1 1",
		"price-basket 1000 -1 1",
		"price-product 50 70 200 1",
		"price-category 60 60 20",
		"weight-basket 2 3 1",
		"amount-basket 1 -1 1",
		"amount-product 3 -1 200 1",
		"and (age 18) (season summer)",
		"or (age 99) (season summer)",
		"xor (age 18) (season summer)",
		"xor (age 99) (season summer)",
		"implies (age 18) (season summer)",
		"implies (age 18) (season winter)",
		"implies (age 99) (season winter)",
	}

	for _, text := range predicates {
		t.Run(text, func(t *testing.T) {
			c, err := constraint.Parse(text)
			require.NoError(t, err)

			verdict, err := CrossCheck(c, snap)
			require.NoError(t, err)
			require.Equal(t, c.IsSatisfied(snap), verdict)
		})
	}
}

func TestCrossCheck_GuestAge(t *testing.T) {
	snap := testSnapshot()
	snap.User.Birthdate = nil

	c, err := constraint.Parse("age 18")
	require.NoError(t, err)

	verdict, err := CrossCheck(c, snap)
	require.NoError(t, err)
	require.False(t, verdict)
	require.False(t, c.IsSatisfied(snap))
}
