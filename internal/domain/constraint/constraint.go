// Package constraint holds the closed set of rule-leaf constraints and their
// boolean combinators. Every node is validated once at construction and is
// immutable afterwards; evaluation is a pure function of a basket snapshot.
package constraint

import (
	"fmt"
	"strings"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
)

// Constraint evaluates to a boolean against an immutable snapshot. The set
// of implementations is closed; the unexported marker keeps it that way.
type Constraint interface {
	IsSatisfied(s *domain.BasketSnapshot) bool
	kind() Kind
}

type Kind int

const (
	KindAge Kind = iota
	KindLocation
	KindTimeOfDay
	KindDayOfMonth
	KindDayOfWeek
	KindSeason
	KindHolidays
	KindPriceBasket
	KindPriceProduct
	KindPriceCategory
	KindWeightBasket
	KindWeightProduct
	KindWeightCategory
	KindAmountBasket
	KindAmountProduct
	KindAmountCategory
	KindAnd
	KindOr
	KindXor
	KindImplies
)

// Reason codes carried by ConstructionError.
const (
	CodeNegativeMin     = "negative_minimum"
	CodeMaxBelowMin     = "maximum_below_minimum"
	CodeNegativeAge     = "negative_age"
	CodeHourRange       = "hour_out_of_range"
	CodeMinuteRange     = "minute_out_of_range"
	CodeWindowReversed  = "time_window_reversed"
	CodeDayOfMonthRange = "day_of_month_out_of_range"
	CodeDayOfWeekRange  = "day_of_week_out_of_range"
	CodeUnknownSeason   = "unknown_season"
	CodeUnknownCountry  = "unknown_country"
	CodeMissingOperand  = "missing_operand"
	CodeBadArity        = "bad_arity"
	CodeBadArgument     = "bad_argument"
)

// ConstructionError reports invalid leaf arguments. Nodes are never
// partially built: a constructor either returns a valid node or this error.
type ConstructionError struct {
	Code   string
	Detail string
}

func (e *ConstructionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("constraint construction error: %s", e.Code)
	}
	return fmt.Sprintf("constraint construction error: %s (%s)", e.Code, e.Detail)
}

// NoMax is the conventional "no upper bound" sentinel for ranged arguments.
const NoMax = -1

func checkFloatRange(min, max float64) error {
	if min < 0 {
		return &ConstructionError{Code: CodeNegativeMin}
	}
	if max != NoMax && max < min {
		return &ConstructionError{Code: CodeMaxBelowMin}
	}
	return nil
}

func checkIntRange(min, max, lo, hi int, code string) error {
	if min < lo || min > hi {
		return &ConstructionError{Code: code}
	}
	if max == NoMax {
		return nil
	}
	if max < lo || max > hi {
		return &ConstructionError{Code: code}
	}
	if max < min {
		return &ConstructionError{Code: CodeMaxBelowMin}
	}
	return nil
}

func inFloatRange(v, min, max float64) bool {
	return v >= min && (max == NoMax || v <= max)
}

func inIntRange(v, min, max int) bool {
	return v >= min && (max == NoMax || v <= max)
}

// --- Leaves ---

type AgeConstraint struct {
	MinAge int
}

func NewAge(minAge int) (*AgeConstraint, error) {
	if minAge < 0 {
		return nil, &ConstructionError{Code: CodeNegativeAge}
	}
	return &AgeConstraint{MinAge: minAge}, nil
}

type LocationConstraint struct {
	Address domain.Address
}

func NewLocation(addr domain.Address) (*LocationConstraint, error) {
	return &LocationConstraint{Address: addr}, nil
}

// TimeOfDayConstraint accepts purchases whose clock time falls inside the
// [start, end] window of the same day.
type TimeOfDayConstraint struct {
	StartHour, StartMinute int
	EndHour, EndMinute     int
}

func NewTimeOfDay(startHour, startMinute, endHour, endMinute int) (*TimeOfDayConstraint, error) {
	for _, h := range []int{startHour, endHour} {
		if h < 0 || h > 23 {
			return nil, &ConstructionError{Code: CodeHourRange}
		}
	}
	for _, m := range []int{startMinute, endMinute} {
		if m < 0 || m > 59 {
			return nil, &ConstructionError{Code: CodeMinuteRange}
		}
	}
	if startHour*60+startMinute > endHour*60+endMinute {
		return nil, &ConstructionError{Code: CodeWindowReversed}
	}
	return &TimeOfDayConstraint{StartHour: startHour, StartMinute: startMinute, EndHour: endHour, EndMinute: endMinute}, nil
}

type DayOfMonthConstraint struct {
	Low, High int
}

func NewDayOfMonth(low, high int) (*DayOfMonthConstraint, error) {
	if err := checkIntRange(low, high, 1, 31, CodeDayOfMonthRange); err != nil {
		return nil, err
	}
	return &DayOfMonthConstraint{Low: low, High: high}, nil
}

// DayOfWeekConstraint: 1 = Sunday .. 7 = Saturday.
type DayOfWeekConstraint struct {
	Low, High int
}

func NewDayOfWeek(low, high int) (*DayOfWeekConstraint, error) {
	if err := checkIntRange(low, high, 1, 7, CodeDayOfWeekRange); err != nil {
		return nil, err
	}
	return &DayOfWeekConstraint{Low: low, High: high}, nil
}

type SeasonConstraint struct {
	Season string
}

var seasons = map[string]bool{"winter": true, "spring": true, "summer": true, "autumn": true}

func NewSeason(name string) (*SeasonConstraint, error) {
	season := strings.ToLower(name)
	if !seasons[season] {
		return nil, &ConstructionError{Code: CodeUnknownSeason, Detail: name}
	}
	return &SeasonConstraint{Season: season}, nil
}

type HolidaysConstraint struct {
	Country string
}

func NewHolidays(countryCode string) (*HolidaysConstraint, error) {
	country := strings.ToUpper(countryCode)
	if _, ok := holidayTable[country]; !ok {
		return nil, &ConstructionError{Code: CodeUnknownCountry, Detail: countryCode}
	}
	return &HolidaysConstraint{Country: country}, nil
}

type PriceBasketConstraint struct {
	Min, Max float64
	StoreID  int64
}

func NewPriceBasket(min, max float64, storeID int64) (*PriceBasketConstraint, error) {
	if err := checkFloatRange(min, max); err != nil {
		return nil, err
	}
	return &PriceBasketConstraint{Min: min, Max: max, StoreID: storeID}, nil
}

type PriceProductConstraint struct {
	Min, Max  float64
	ProductID int64
	StoreID   int64
}

func NewPriceProduct(min, max float64, productID, storeID int64) (*PriceProductConstraint, error) {
	if err := checkFloatRange(min, max); err != nil {
		return nil, err
	}
	return &PriceProductConstraint{Min: min, Max: max, ProductID: productID, StoreID: storeID}, nil
}

type PriceCategoryConstraint struct {
	Min, Max   float64
	CategoryID int64
}

func NewPriceCategory(min, max float64, categoryID int64) (*PriceCategoryConstraint, error) {
	if err := checkFloatRange(min, max); err != nil {
		return nil, err
	}
	return &PriceCategoryConstraint{Min: min, Max: max, CategoryID: categoryID}, nil
}

type WeightBasketConstraint struct {
	Min, Max float64
	StoreID  int64
}

func NewWeightBasket(min, max float64, storeID int64) (*WeightBasketConstraint, error) {
	if err := checkFloatRange(min, max); err != nil {
		return nil, err
	}
	return &WeightBasketConstraint{Min: min, Max: max, StoreID: storeID}, nil
}

type WeightProductConstraint struct {
	Min, Max  float64
	ProductID int64
	StoreID   int64
}

func NewWeightProduct(min, max float64, productID, storeID int64) (*WeightProductConstraint, error) {
	if err := checkFloatRange(min, max); err != nil {
		return nil, err
	}
	return &WeightProductConstraint{Min: min, Max: max, ProductID: productID, StoreID: storeID}, nil
}

type WeightCategoryConstraint struct {
	Min, Max   float64
	CategoryID int64
}

func NewWeightCategory(min, max float64, categoryID int64) (*WeightCategoryConstraint, error) {
	if err := checkFloatRange(min, max); err != nil {
		return nil, err
	}
	return &WeightCategoryConstraint{Min: min, Max: max, CategoryID: categoryID}, nil
}

type AmountBasketConstraint struct {
	Min, Max int
	StoreID  int64
}

func NewAmountBasket(min, max int, storeID int64) (*AmountBasketConstraint, error) {
	if err := checkIntRange(min, max, 0, 1<<31, CodeNegativeMin); err != nil {
		return nil, err
	}
	return &AmountBasketConstraint{Min: min, Max: max, StoreID: storeID}, nil
}

type AmountProductConstraint struct {
	Min, Max  int
	ProductID int64
	StoreID   int64
}

func NewAmountProduct(min, max int, productID, storeID int64) (*AmountProductConstraint, error) {
	if err := checkIntRange(min, max, 0, 1<<31, CodeNegativeMin); err != nil {
		return nil, err
	}
	return &AmountProductConstraint{Min: min, Max: max, ProductID: productID, StoreID: storeID}, nil
}

type AmountCategoryConstraint struct {
	Min, Max   int
	CategoryID int64
}

func NewAmountCategory(min, max int, categoryID int64) (*AmountCategoryConstraint, error) {
	if err := checkIntRange(min, max, 0, 1<<31, CodeNegativeMin); err != nil {
		return nil, err
	}
	return &AmountCategoryConstraint{Min: min, Max: max, CategoryID: categoryID}, nil
}

// --- Combinators ---

type AndConstraint struct{ Left, Right Constraint }

type OrConstraint struct{ Left, Right Constraint }

type XorConstraint struct{ Left, Right Constraint }

type ImpliesConstraint struct{ Left, Right Constraint }

func checkOperands(l, r Constraint) error {
	if l == nil || r == nil {
		return &ConstructionError{Code: CodeMissingOperand}
	}
	return nil
}

func NewAnd(l, r Constraint) (*AndConstraint, error) {
	if err := checkOperands(l, r); err != nil {
		return nil, err
	}
	return &AndConstraint{Left: l, Right: r}, nil
}

func NewOr(l, r Constraint) (*OrConstraint, error) {
	if err := checkOperands(l, r); err != nil {
		return nil, err
	}
	return &OrConstraint{Left: l, Right: r}, nil
}

func NewXor(l, r Constraint) (*XorConstraint, error) {
	if err := checkOperands(l, r); err != nil {
		return nil, err
	}
	return &XorConstraint{Left: l, Right: r}, nil
}

func NewImplies(l, r Constraint) (*ImpliesConstraint, error) {
	if err := checkOperands(l, r); err != nil {
		return nil, err
	}
	return &ImpliesConstraint{Left: l, Right: r}, nil
}

func (*AgeConstraint) kind() Kind            { return KindAge }
func (*LocationConstraint) kind() Kind       { return KindLocation }
func (*TimeOfDayConstraint) kind() Kind      { return KindTimeOfDay }
func (*DayOfMonthConstraint) kind() Kind     { return KindDayOfMonth }
func (*DayOfWeekConstraint) kind() Kind      { return KindDayOfWeek }
func (*SeasonConstraint) kind() Kind         { return KindSeason }
func (*HolidaysConstraint) kind() Kind       { return KindHolidays }
func (*PriceBasketConstraint) kind() Kind    { return KindPriceBasket }
func (*PriceProductConstraint) kind() Kind   { return KindPriceProduct }
func (*PriceCategoryConstraint) kind() Kind  { return KindPriceCategory }
func (*WeightBasketConstraint) kind() Kind   { return KindWeightBasket }
func (*WeightProductConstraint) kind() Kind  { return KindWeightProduct }
func (*WeightCategoryConstraint) kind() Kind { return KindWeightCategory }
func (*AmountBasketConstraint) kind() Kind   { return KindAmountBasket }
func (*AmountProductConstraint) kind() Kind  { return KindAmountProduct }
func (*AmountCategoryConstraint) kind() Kind { return KindAmountCategory }
func (*AndConstraint) kind() Kind            { return KindAnd }
func (*OrConstraint) kind() Kind             { return KindOr }
func (*XorConstraint) kind() Kind            { return KindXor }
func (*ImpliesConstraint) kind() Kind        { return KindImplies }
