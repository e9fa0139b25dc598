// Package jsonlogic bridges validated constraint trees to the JsonLogic
// dialect. The exporter walks a tree, precomputes each leaf's aggregate as a
// named fact of the snapshot, and emits the equivalent JsonLogic rule; the
// cross-checker then runs the rule through the jsonlogic library. It is a
// diagnostic surface (CLI and tests), not the evaluation path.
package jsonlogic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
)

// Export converts a constraint tree into a JsonLogic rule plus the fact map
// the rule reads from. Facts are derived from the snapshot exactly the way
// the native evaluator aggregates them.
func Export(c constraint.Constraint, snap *domain.BasketSnapshot) (rule any, data map[string]any, err error) {
	ex := &exporter{snap: snap, data: snap.ToMap()}
	rule, err = ex.rule(c)
	if err != nil {
		return nil, nil, err
	}
	return rule, ex.data, nil
}

// CrossCheck evaluates the exported rule through the jsonlogic library and
// returns its verdict, to be compared against the native IsSatisfied.
func CrossCheck(c constraint.Constraint, snap *domain.BasketSnapshot) (bool, error) {
	rule, data, err := Export(c, snap)
	if err != nil {
		return false, err
	}

	ruleJSON, _ := json.Marshal(rule)
	dataJSON, _ := json.Marshal(data)

	var result bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(ruleJSON), bytes.NewReader(dataJSON), &result); err != nil {
		return false, fmt.Errorf("jsonlogic apply failed: %w", err)
	}

	var verdict bool
	if err := json.Unmarshal(bytes.TrimSpace(result.Bytes()), &verdict); err != nil {
		return false, fmt.Errorf("jsonlogic returned a non-boolean: %q", result.String())
	}
	return verdict, nil
}

type exporter struct {
	snap *domain.BasketSnapshot
	data map[string]any
}

func (e *exporter) rule(c constraint.Constraint) (any, error) {
	switch v := c.(type) {
	case *constraint.AndConstraint:
		return e.pair("and", v.Left, v.Right)
	case *constraint.OrConstraint:
		return e.pair("or", v.Left, v.Right)
	case *constraint.XorConstraint:
		left, err := e.rule(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.rule(v.Right)
		if err != nil {
			return nil, err
		}
		// xor has no JsonLogic operator; compare truthiness.
		return map[string]any{"!=": []any{
			map[string]any{"!!": []any{left}},
			map[string]any{"!!": []any{right}},
		}}, nil
	case *constraint.ImpliesConstraint:
		left, err := e.rule(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.rule(v.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"or": []any{map[string]any{"!": []any{left}}, right}}, nil

	case *constraint.AgeConstraint:
		if e.snap.User.Birthdate == nil {
			return false, nil
		}
		e.data["age"] = e.ageFact()
		return map[string]any{">=": []any{variable("age"), v.MinAge}}, nil
	case *constraint.LocationConstraint:
		return e.locationRule(v), nil
	case *constraint.TimeOfDayConstraint:
		e.data["minuteOfDay"] = e.snap.PurchaseTime.Hour()*60 + e.snap.PurchaseTime.Minute()
		return rangeRule("minuteOfDay", float64(v.StartHour*60+v.StartMinute), float64(v.EndHour*60+v.EndMinute)), nil
	case *constraint.DayOfMonthConstraint:
		e.data["monthDay"] = e.snap.PurchaseTime.Day()
		return rangeRule("monthDay", float64(v.Low), float64(v.High)), nil
	case *constraint.DayOfWeekConstraint:
		e.data["weekDay"] = int(e.snap.PurchaseTime.Weekday()) + 1
		return rangeRule("weekDay", float64(v.Low), float64(v.High)), nil
	case *constraint.SeasonConstraint:
		e.data["season"] = seasonFact(e.snap)
		return map[string]any{"==": []any{variable("season"), v.Season}}, nil
	case *constraint.HolidaysConstraint:
		key := "holiday_" + v.Country
		e.data[key] = holidayFact(e.snap, v.Country)
		return map[string]any{"==": []any{variable(key), true}}, nil

	case *constraint.PriceBasketConstraint:
		price, _, _ := e.snap.StoreTotals(v.StoreID)
		return e.aggregate(fmt.Sprintf("priceBasket_%d", v.StoreID), price, v.Min, v.Max), nil
	case *constraint.PriceProductConstraint:
		price, _, _ := e.snap.ProductTotals(v.ProductID, v.StoreID)
		return e.aggregate(fmt.Sprintf("priceProduct_%d_%d", v.ProductID, v.StoreID), price, v.Min, v.Max), nil
	case *constraint.PriceCategoryConstraint:
		price, _, _ := e.snap.CategoryTotals(v.CategoryID, true)
		return e.aggregate(fmt.Sprintf("priceCategory_%d", v.CategoryID), price, v.Min, v.Max), nil
	case *constraint.WeightBasketConstraint:
		_, weight, _ := e.snap.StoreTotals(v.StoreID)
		return e.aggregate(fmt.Sprintf("weightBasket_%d", v.StoreID), weight, v.Min, v.Max), nil
	case *constraint.WeightProductConstraint:
		_, weight, _ := e.snap.ProductTotals(v.ProductID, v.StoreID)
		return e.aggregate(fmt.Sprintf("weightProduct_%d_%d", v.ProductID, v.StoreID), weight, v.Min, v.Max), nil
	case *constraint.WeightCategoryConstraint:
		_, weight, _ := e.snap.CategoryTotals(v.CategoryID, true)
		return e.aggregate(fmt.Sprintf("weightCategory_%d", v.CategoryID), weight, v.Min, v.Max), nil
	case *constraint.AmountBasketConstraint:
		_, _, amount := e.snap.StoreTotals(v.StoreID)
		return e.aggregate(fmt.Sprintf("amountBasket_%d", v.StoreID), float64(amount), float64(v.Min), float64(v.Max)), nil
	case *constraint.AmountProductConstraint:
		_, _, amount := e.snap.ProductTotals(v.ProductID, v.StoreID)
		return e.aggregate(fmt.Sprintf("amountProduct_%d_%d", v.ProductID, v.StoreID), float64(amount), float64(v.Min), float64(v.Max)), nil
	case *constraint.AmountCategoryConstraint:
		_, _, amount := e.snap.CategoryTotals(v.CategoryID, true)
		return e.aggregate(fmt.Sprintf("amountCategory_%d", v.CategoryID), float64(amount), float64(v.Min), float64(v.Max)), nil

	default:
		return nil, fmt.Errorf("unsupported constraint %T", c)
	}
}

func (e *exporter) pair(op string, l, r constraint.Constraint) (any, error) {
	left, err := e.rule(l)
	if err != nil {
		return nil, err
	}
	right, err := e.rule(r)
	if err != nil {
		return nil, err
	}
	return map[string]any{op: []any{left, right}}, nil
}

func (e *exporter) aggregate(key string, value, min, max float64) any {
	e.data[key] = value
	return rangeRule(key, min, max)
}

func (e *exporter) ageFact() int {
	bd := *e.snap.User.Birthdate
	at := e.snap.PurchaseTime
	years := at.Year() - bd.Year()
	if bd.AddDate(years, 0, 0).After(at) {
		years--
	}
	return years
}

func (e *exporter) locationRule(v *constraint.LocationConstraint) any {
	if e.snap.User.Address == nil {
		return false
	}
	return map[string]any{"and": []any{
		map[string]any{"==": []any{variable("street"), v.Address.Street}},
		map[string]any{"==": []any{variable("city"), v.Address.City}},
		map[string]any{"==": []any{variable("state"), v.Address.State}},
		map[string]any{"==": []any{variable("country"), v.Address.Country}},
		map[string]any{"==": []any{variable("zip"), v.Address.Zip}},
	}}
}

func variable(name string) map[string]any {
	return map[string]any{"var": name}
}

// rangeRule emits a lower-bound check, adding the upper bound unless max is
// the -1 sentinel.
func rangeRule(key string, min, max float64) any {
	lower := map[string]any{">=": []any{variable(key), min}}
	if max == constraint.NoMax {
		return lower
	}
	upper := map[string]any{"<=": []any{variable(key), max}}
	return map[string]any{"and": []any{lower, upper}}
}

func seasonFact(s *domain.BasketSnapshot) string {
	switch s.PurchaseTime.Month() {
	case 12, 1, 2:
		return "winter"
	case 3, 4, 5:
		return "spring"
	case 6, 7, 8:
		return "summer"
	default:
		return "autumn"
	}
}

func holidayFact(s *domain.BasketSnapshot, country string) bool {
	return constraint.IsHoliday(country, s.PurchaseTime)
}
