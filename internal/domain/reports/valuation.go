package reports

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"assetdesk/internal/core/types"
)

// DepreciationMethod selects how book value declines over the useful life.
type DepreciationMethod string

const (
	StraightLine     DepreciationMethod = "straight_line"
	WrittenDownValue DepreciationMethod = "written_down_value"
)

// ParseDepreciationMethod accepts the method names the backend uses. Unknown
// values fall back to straight line.
func ParseDepreciationMethod(s string) DepreciationMethod {
	switch strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s))) {
	case "written_down_value", "wdv", "declining_balance", "reducing_balance":
		return WrittenDownValue
	default:
		return StraightLine
	}
}

// Asset holds the inputs of a depreciation calculation.
type Asset struct {
	Cost         types.Money
	Salvage      types.Money
	LifeYears    decimal.Decimal
	Method       DepreciationMethod
	PurchaseDate time.Time

	// Rate is the annual WDV rate as a fraction (0.25) or percentage (25).
	// Only used when Salvage is zero.
	Rate *decimal.Decimal
}

// Valuation is the depreciation state of an asset at a point in time.
type Valuation struct {
	ElapsedYears decimal.Decimal
	Accumulated  types.Money
	BookValue    types.Money
	Percent      decimal.Decimal
}

var (
	hundred       = decimal.NewFromInt(100)
	daysPerYear   = decimal.NewFromFloat(365.25)
	hoursPerDay   = decimal.NewFromInt(24)
	decimalTwo    = decimal.NewFromInt(2)
	decimalOne    = decimal.NewFromInt(1)
	ratePrecision = int32(8)
)

// Depreciate values asset as of now. Amounts are rounded to cents.
func Depreciate(a Asset, now time.Time) Valuation {
	elapsed := decimal.Zero
	if !a.PurchaseDate.IsZero() && now.After(a.PurchaseDate) {
		hours := decimal.NewFromFloat(now.Sub(a.PurchaseDate).Hours())
		elapsed = hours.Div(hoursPerDay).Div(daysPerYear)
	}

	v := Valuation{ElapsedYears: elapsed.Round(2), BookValue: types.RoundMoney(a.Cost), Accumulated: decimal.Zero, Percent: decimal.Zero}
	if !a.Cost.IsPositive() || !a.LifeYears.IsPositive() {
		return v
	}

	salvage := a.Salvage
	if salvage.IsNegative() {
		salvage = decimal.Zero
	}
	if salvage.GreaterThan(a.Cost) {
		salvage = a.Cost
	}
	depreciable := a.Cost.Sub(salvage)

	var accumulated decimal.Decimal
	switch a.Method {
	case WrittenDownValue:
		rate := wdvRate(a.Cost, salvage, a.LifeYears, a.Rate)
		factor := math.Pow(1-rate, elapsed.InexactFloat64())
		book := a.Cost.Mul(decimal.NewFromFloat(factor))
		if book.LessThan(salvage) {
			book = salvage
		}
		accumulated = a.Cost.Sub(book)
	default:
		accumulated = depreciable.Div(a.LifeYears).Mul(elapsed)
	}

	if accumulated.GreaterThan(depreciable) {
		accumulated = depreciable
	}
	if accumulated.IsNegative() {
		accumulated = decimal.Zero
	}

	v.Accumulated = types.RoundMoney(accumulated)
	v.BookValue = types.RoundMoney(a.Cost.Sub(accumulated))
	v.Percent = accumulated.Div(a.Cost).Mul(hundred).Round(2)
	return v
}

// wdvRate derives the annual rate that reduces cost to salvage over life.
// Without a salvage value the record's rate is used, else double declining 2/life.
func wdvRate(cost, salvage types.Money, life decimal.Decimal, rate *decimal.Decimal) float64 {
	if salvage.IsPositive() {
		ratio := salvage.DivRound(cost, ratePrecision).InexactFloat64()
		return 1 - math.Pow(ratio, 1/life.InexactFloat64())
	}

	if rate != nil && rate.IsPositive() {
		r := *rate
		if r.GreaterThan(decimalOne) {
			r = r.Div(hundred)
		}
		if r.GreaterThan(decimalOne) {
			r = decimalOne
		}
		return r.InexactFloat64()
	}

	r := decimalTwo.DivRound(life, ratePrecision)
	if r.GreaterThan(decimalOne) {
		r = decimalOne
	}
	return r.InexactFloat64()
}
