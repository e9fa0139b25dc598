package constraint

import (
	"time"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
)

// Guests (no birthdate) always fail an age check.
func (c *AgeConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	if s.User.Birthdate == nil {
		return false
	}
	return ageAt(s.PurchaseTime, *s.User.Birthdate) >= c.MinAge
}

// ageAt computes whole years between birthdate and the purchase moment.
func ageAt(at, birthdate time.Time) int {
	years := at.Year() - birthdate.Year()
	anniversary := birthdate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

func (c *LocationConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	if s.User.Address == nil {
		return false
	}
	return *s.User.Address == c.Address
}

func (c *TimeOfDayConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	minutes := s.PurchaseTime.Hour()*60 + s.PurchaseTime.Minute()
	return minutes >= c.StartHour*60+c.StartMinute && minutes <= c.EndHour*60+c.EndMinute
}

func (c *DayOfMonthConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	return inIntRange(s.PurchaseTime.Day(), c.Low, c.High)
}

func (c *DayOfWeekConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	day := int(s.PurchaseTime.Weekday()) + 1 // 1 = Sunday
	return inIntRange(day, c.Low, c.High)
}

func (c *SeasonConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	return seasonOf(s.PurchaseTime) == c.Season
}

// Northern-hemisphere meteorological seasons.
func seasonOf(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

type monthDay struct {
	Month time.Month
	Day   int
}

// Fixed-date public holidays per supported country code. Movable feasts are
// out of scope for this table.
var holidayTable = map[string][]monthDay{
	"AO": {{time.January, 1}, {time.February, 4}, {time.November, 11}, {time.December, 25}},
	"PT": {{time.January, 1}, {time.April, 25}, {time.June, 10}, {time.December, 25}},
	"US": {{time.January, 1}, {time.July, 4}, {time.December, 25}},
	"GB": {{time.January, 1}, {time.December, 25}, {time.December, 26}},
	"DE": {{time.January, 1}, {time.October, 3}, {time.December, 25}, {time.December, 26}},
}

func (c *HolidaysConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	return IsHoliday(c.Country, s.PurchaseTime)
}

// IsHoliday reports whether t falls on a fixed-date public holiday of the
// given country code.
func IsHoliday(country string, t time.Time) bool {
	for _, h := range holidayTable[country] {
		if t.Month() == h.Month && t.Day() == h.Day {
			return true
		}
	}
	return false
}

func (c *PriceBasketConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	price, _, _ := s.StoreTotals(c.StoreID)
	return inFloatRange(price, c.Min, c.Max)
}

func (c *PriceProductConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	price, _, _ := s.ProductTotals(c.ProductID, c.StoreID)
	return inFloatRange(price, c.Min, c.Max)
}

func (c *PriceCategoryConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	price, _, _ := s.CategoryTotals(c.CategoryID, true)
	return inFloatRange(price, c.Min, c.Max)
}

func (c *WeightBasketConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	_, weight, _ := s.StoreTotals(c.StoreID)
	return inFloatRange(weight, c.Min, c.Max)
}

func (c *WeightProductConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	_, weight, _ := s.ProductTotals(c.ProductID, c.StoreID)
	return inFloatRange(weight, c.Min, c.Max)
}

func (c *WeightCategoryConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	_, weight, _ := s.CategoryTotals(c.CategoryID, true)
	return inFloatRange(weight, c.Min, c.Max)
}

func (c *AmountBasketConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	_, _, amount := s.StoreTotals(c.StoreID)
	return inIntRange(amount, c.Min, c.Max)
}

func (c *AmountProductConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	_, _, amount := s.ProductTotals(c.ProductID, c.StoreID)
	return inIntRange(amount, c.Min, c.Max)
}

func (c *AmountCategoryConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	_, _, amount := s.CategoryTotals(c.CategoryID, true)
	return inIntRange(amount, c.Min, c.Max)
}

func (c *AndConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	return c.Left.IsSatisfied(s) && c.Right.IsSatisfied(s)
}

func (c *OrConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	return c.Left.IsSatisfied(s) || c.Right.IsSatisfied(s)
}

func (c *XorConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	return c.Left.IsSatisfied(s) != c.Right.IsSatisfied(s)
}

func (c *ImpliesConstraint) IsSatisfied(s *domain.BasketSnapshot) bool {
	return !c.Left.IsSatisfied(s) || c.Right.IsSatisfied(s)
}
