package constraint

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testSnapshot() *domain.BasketSnapshot {
	camera := domain.ProductLine{ProductID: 1, StoreID: 1, Price: 5.0, Weight: 1.0, Amount: 2}
	lens := domain.ProductLine{ProductID: 2, StoreID: 1, Price: 20.0, Weight: 2.5, Amount: 1}

	return &domain.BasketSnapshot{
		StoreID:  1,
		Products: []domain.ProductLine{camera, lens},
		Categories: []domain.CategoryView{
			{
				CategoryID: 10,
				Name:       "electronics",
				SubCategories: []domain.CategoryView{
					{CategoryID: 11, ParentID: 10, Name: "cameras", Products: []domain.ProductLine{camera}},
					{CategoryID: 12, ParentID: 10, Name: "promo", Products: []domain.ProductLine{camera, lens}},
				},
			},
		},
		TotalPrice:   30.0,
		PurchaseTime: time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC), // Saturday, summer
		User: domain.UserView{
			UserID:    7,
			Birthdate: date(1990, time.May, 12),
			Address:   &domain.Address{Street: "a", City: "b", State: "c", Country: "d", Zip: "e"},
		},
	}
}

func TestAgeConstraint(t *testing.T) {
	s := testSnapshot()

	t.Run("of age passes", func(t *testing.T) {
		c, err := NewAge(18)
		require.NoError(t, err)
		require.True(t, c.IsSatisfied(s))
	})

	t.Run("17 year old fails an 18+ check", func(t *testing.T) {
		s := testSnapshot()
		s.PurchaseTime = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		s.User.Birthdate = date(2008, time.September, 20) // turns 18 in 19 days

		c, err := NewAge(18)
		require.NoError(t, err)
		require.False(t, c.IsSatisfied(s))
	})

	t.Run("guest always fails", func(t *testing.T) {
		s := testSnapshot()
		s.User.Birthdate = nil
		c, _ := NewAge(18)
		require.False(t, c.IsSatisfied(s))
	})

	t.Run("negative age rejected", func(t *testing.T) {
		_, err := NewAge(-1)
		requireConstruction(t, err, CodeNegativeAge)
	})
}

func TestLocationConstraint(t *testing.T) {
	s := testSnapshot()

	c, err := NewLocation(domain.Address{Street: "a", City: "b", State: "c", Country: "d", Zip: "e"})
	require.NoError(t, err)
	require.True(t, c.IsSatisfied(s))

	other, _ := NewLocation(domain.Address{Street: "a", City: "b", State: "c", Country: "d", Zip: "X"})
	require.False(t, other.IsSatisfied(s))

	s.User.Address = nil
	require.False(t, c.IsSatisfied(s))
}

func TestCalendarConstraints(t *testing.T) {
	s := testSnapshot() // 2026-08-29 14:30 UTC, a Saturday in summer

	t.Run("time of day", func(t *testing.T) {
		in, _ := NewTimeOfDay(10, 0, 20, 0)
		require.True(t, in.IsSatisfied(s))
		out, _ := NewTimeOfDay(15, 0, 20, 0)
		require.False(t, out.IsSatisfied(s))
	})

	t.Run("day of month", func(t *testing.T) {
		in, _ := NewDayOfMonth(25, 31)
		require.True(t, in.IsSatisfied(s))
		open, _ := NewDayOfMonth(29, NoMax)
		require.True(t, open.IsSatisfied(s))
		out, _ := NewDayOfMonth(1, 28)
		require.False(t, out.IsSatisfied(s))
	})

	t.Run("day of week", func(t *testing.T) {
		saturday, _ := NewDayOfWeek(7, 7)
		require.True(t, saturday.IsSatisfied(s))
		weekdays, _ := NewDayOfWeek(2, 6)
		require.False(t, weekdays.IsSatisfied(s))
	})

	t.Run("season", func(t *testing.T) {
		summer, _ := NewSeason("Summer")
		require.True(t, summer.IsSatisfied(s))
		winter, _ := NewSeason("winter")
		require.False(t, winter.IsSatisfied(s))
	})

	t.Run("holiday", func(t *testing.T) {
		ao, _ := NewHolidays("ao")
		require.False(t, ao.IsSatisfied(s))

		s := testSnapshot()
		s.PurchaseTime = time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC)
		require.True(t, ao.IsSatisfied(s))
	})
}

func TestCalendarConstruction(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"hour out of range", errOf(NewTimeOfDay(24, 0, 25, 0)), CodeHourRange},
		{"minute out of range", errOf(NewTimeOfDay(10, 61, 12, 0)), CodeMinuteRange},
		{"reversed window", errOf(NewTimeOfDay(20, 0, 10, 0)), CodeWindowReversed},
		{"day of month zero", errOf(NewDayOfMonth(0, 10)), CodeDayOfMonthRange},
		{"day of month over 31", errOf(NewDayOfMonth(1, 32)), CodeDayOfMonthRange},
		{"day of week over 7", errOf(NewDayOfWeek(1, 8)), CodeDayOfWeekRange},
		{"reversed day range", errOf(NewDayOfWeek(5, 2)), CodeMaxBelowMin},
		{"unknown season", errOf(NewSeason("monsoon")), CodeUnknownSeason},
		{"unknown country", errOf(NewHolidays("XX")), CodeUnknownCountry},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requireConstruction(t, tc.err, tc.code)
		})
	}
}

func TestRangedConstraints(t *testing.T) {
	s := testSnapshot() // store 1: price 30.0, weight 4.5, amount 3

	t.Run("price basket within range", func(t *testing.T) {
		c, _ := NewPriceBasket(10, 50, 1)
		require.True(t, c.IsSatisfied(s))
	})

	t.Run("sentinel -1 means unbounded above", func(t *testing.T) {
		c, _ := NewPriceBasket(10, NoMax, 1)
		require.True(t, c.IsSatisfied(s))
		floor, _ := NewPriceBasket(1000, NoMax, 1)
		require.False(t, floor.IsSatisfied(s))
	})

	t.Run("product price below minimum fails with no upper bound", func(t *testing.T) {
		s := &domain.BasketSnapshot{
			StoreID:  0,
			Products: []domain.ProductLine{{ProductID: 0, StoreID: 0, Price: 5.0, Amount: 1}},
		}
		c, err := NewPriceProduct(10.0, NoMax, 0, 0)
		require.NoError(t, err)
		require.False(t, c.IsSatisfied(s))
	})

	t.Run("category aggregates transitively and deduplicates", func(t *testing.T) {
		// camera appears under two sub-categories: 5*2 + 20*1 = 30 once.
		c, _ := NewPriceCategory(30, 30, 10)
		require.True(t, c.IsSatisfied(s))
		amount, _ := NewAmountCategory(3, 3, 10)
		require.True(t, amount.IsSatisfied(s))
		weight, _ := NewWeightCategory(4.5, 4.5, 10)
		require.True(t, weight.IsSatisfied(s))
	})

	t.Run("weight and amount variants", func(t *testing.T) {
		w, _ := NewWeightBasket(4.0, 5.0, 1)
		require.True(t, w.IsSatisfied(s))
		a, _ := NewAmountProduct(2, NoMax, 1, 1)
		require.True(t, a.IsSatisfied(s))
		tight, _ := NewAmountBasket(4, NoMax, 1)
		require.False(t, tight.IsSatisfied(s))
	})

	t.Run("construction validation", func(t *testing.T) {
		requireConstruction(t, errOf(NewPriceBasket(-1, 10, 1)), CodeNegativeMin)
		requireConstruction(t, errOf(NewPriceBasket(10, 5, 1)), CodeMaxBelowMin)
		requireConstruction(t, errOf(NewWeightProduct(5, 2, 1, 1)), CodeMaxBelowMin)
		requireConstruction(t, errOf(NewAmountBasket(-3, NoMax, 1)), CodeNegativeMin)
	})
}

func TestCombinators(t *testing.T) {
	s := testSnapshot()

	yes, _ := NewAge(18)
	no, _ := NewPriceBasket(1000, NoMax, 1)
	sides := []Constraint{yes, no}

	for _, l := range sides {
		for _, r := range sides {
			lv, rv := l.IsSatisfied(s), r.IsSatisfied(s)

			and, _ := NewAnd(l, r)
			require.Equal(t, lv && rv, and.IsSatisfied(s))

			or, _ := NewOr(l, r)
			require.Equal(t, lv || rv, or.IsSatisfied(s))

			xor, _ := NewXor(l, r)
			require.Equal(t, lv != rv, xor.IsSatisfied(s))

			implies, _ := NewImplies(l, r)
			require.Equal(t, !lv || rv, implies.IsSatisfied(s))
		}
	}

	_, err := NewAnd(yes, nil)
	requireConstruction(t, err, CodeMissingOperand)
}

func TestParse_BuildsValidatedTree(t *testing.T) {
	s := testSnapshot()

	c, err := Parse("and (age 18) (location {address: a, city: b, state: c, country: d, zip_code: e})")
	require.NoError(t, err)
	require.IsType(t, &AndConstraint{}, c)
	require.True(t, c.IsSatisfied(s))

	c, err = Parse("implies (weekday 7 7) (time 10 00 20 00)")
	require.NoError(t, err)
	require.True(t, c.IsSatisfied(s))
}

func TestFromExpression_ArityAndValidation(t *testing.T) {
	_, err := Parse("age 18 21")
	requireConstruction(t, err, CodeBadArity)

	_, err = Parse("age")
	requireConstruction(t, err, CodeBadArity)

	_, err = Parse("monthday 0 40")
	requireConstruction(t, err, CodeDayOfMonthRange)

	_, err = Parse("price-basket 50.0 10.0 1")
	requireConstruction(t, err, CodeMaxBelowMin)

	t.Run("non-numeric argument is rejected, not coerced", func(t *testing.T) {
		_, err := Parse("age abc")
		requireConstruction(t, err, CodeBadArgument)

		_, err = Parse("price-basket 10 20 abc")
		requireConstruction(t, err, CodeBadArgument)

		_, err = Parse("amount-product 1 -1 abc 1")
		requireConstruction(t, err, CodeBadArgument)
	})
}

func errOf[T any](_ T, err error) error { return err }

func requireConstruction(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var cerr *ConstructionError
	require.True(t, errors.As(err, &cerr), "expected ConstructionError, got %T", err)
	require.Equal(t, code, cerr.Code)
}
