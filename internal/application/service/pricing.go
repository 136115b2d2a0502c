package service

import (
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// DefaultTaxFallback is the GST rate used when neither the product nor the
// pharmacy configures one.
var DefaultTaxFallback = decimal.NewFromInt(12)

// TaxRate resolves the GST percentage charged on a line. When tax is not
// applicable to the pharmacy the rate is zero. Otherwise the product's own
// rate wins, then the pharmacy default, then fallback.
func TaxRate(product *entity.Product, settings *entity.PharmacySettings, fallback decimal.Decimal) decimal.Decimal {
	if !settings.TaxApplicable() {
		return decimal.Zero
	}
	if product.TaxPercentage != nil {
		return *product.TaxPercentage
	}
	if settings.DefaultGSTPercent.IsPositive() {
		return settings.DefaultGSTPercent
	}
	return fallback
}

// LineAmounts are the money figures of one invoice line.
type LineAmounts struct {
	Total  decimal.Decimal
	Tax    decimal.Decimal
	Profit decimal.Decimal
}

// ComputeLine prices qty units. Tax is rounded to paise per line.
func ComputeLine(unitPrice, purchasePrice decimal.Decimal, qty int, ratePercent decimal.Decimal) LineAmounts {
	q := decimal.NewFromInt(int64(qty))
	total := unitPrice.Mul(q)
	return LineAmounts{
		Total:  total,
		Tax:    total.Mul(ratePercent).Div(hundred).Round(2),
		Profit: unitPrice.Sub(purchasePrice).Mul(q),
	}
}

// SaleTotals are the invoice-level aggregates.
type SaleTotals struct {
	SubTotal    decimal.Decimal
	Discount    decimal.Decimal
	TotalTax    decimal.Decimal
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	IGST        decimal.Decimal
	TotalAmount decimal.Decimal
	TotalProfit decimal.Decimal
}

// ComputeTotals sums the lines, splits tax evenly into CGST and SGST and
// charges the discount against both the amount due and the profit.
func ComputeTotals(lines []LineAmounts, discount decimal.Decimal) SaleTotals {
	t := SaleTotals{
		SubTotal:    decimal.Zero,
		Discount:    discount,
		TotalTax:    decimal.Zero,
		IGST:        decimal.Zero,
		TotalProfit: decimal.Zero,
	}
	for _, l := range lines {
		t.SubTotal = t.SubTotal.Add(l.Total)
		t.TotalTax = t.TotalTax.Add(l.Tax)
		t.TotalProfit = t.TotalProfit.Add(l.Profit)
	}
	t.CGST = t.TotalTax.Div(two)
	t.SGST = t.TotalTax.Sub(t.CGST)
	t.TotalAmount = t.SubTotal.Add(t.TotalTax).Sub(discount)
	t.TotalProfit = t.TotalProfit.Sub(discount)
	return t
}

// SuggestDiscount applies the pharmacy discount tiers to a subtotal: the
// global percentage always, plus the threshold percentage once the subtotal
// reaches a positive threshold amount.
func SuggestDiscount(subTotal decimal.Decimal, settings *entity.PharmacySettings) decimal.Decimal {
	discount := subTotal.Mul(settings.GlobalDiscountPercent).Div(hundred)
	if settings.ThresholdAmount.IsPositive() && subTotal.GreaterThanOrEqual(settings.ThresholdAmount) {
		discount = discount.Add(subTotal.Mul(settings.ThresholdDiscountPercent).Div(hundred))
	}
	return discount.Round(2)
}

// GrowthPercentage compares two revenues, rounded to one decimal place.
func GrowthPercentage(current, previous decimal.Decimal) float64 {
	switch {
	case previous.IsPositive():
		return current.Sub(previous).Div(previous).Mul(hundred).Round(1).InexactFloat64()
	case current.IsPositive():
		return 100
	default:
		return 0
	}
}

// StartOfDay returns 00:00:00.000 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// PreviousPeriod returns the window of equal length ending 1ms before start.
func PreviousPeriod(start, end time.Time) (time.Time, time.Time) {
	prevEnd := start.Add(-time.Millisecond)
	return prevEnd.Add(-end.Sub(start)), prevEnd
}
