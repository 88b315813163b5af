package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultVATRate is the only VAT rate the shop invoices with, in percent.
var DefaultVATRate = decimal.NewFromInt(19)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Digit limits of the stored line item columns.
const (
	quantityIntDigits  = 9
	quantityScale      = 3
	unitPriceIntDigits = 8
	unitPriceScale     = 4
)

// MaxLineAmount is the largest net, VAT or gross amount a line item can hold.
var MaxLineAmount = decimal.RequireFromString("9999999999.99")

type LineAmounts struct {
	Net   decimal.Decimal
	VAT   decimal.Decimal
	Gross decimal.Decimal
}

// ComputeLineAmounts derives the net, VAT and gross amounts of one line item.
//
// Net and VAT are both computed from the unrounded quantity × unit price and rounded
// half-up to cents once each. Gross is the sum of the two rounded values, so it can be
// one cent away from rounding the unrounded sum: 1 × 0.105 at 19% gives 0.11 + 0.02 = 0.13,
// while round(0.105 + 0.01995) would be 0.12. The printed line always adds up.
func ComputeLineAmounts(quantity, unitPrice, vatRatePercent decimal.Decimal) (LineAmounts, error) {
	if !quantity.IsPositive() {
		return LineAmounts{}, &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if err := checkDigits("quantity", quantity, quantityIntDigits, quantityScale); err != nil {
		return LineAmounts{}, err
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}
	if err := checkDigits("unit_price", unitPrice, unitPriceIntDigits, unitPriceScale); err != nil {
		return LineAmounts{}, err
	}
	if vatRatePercent.IsNegative() {
		return LineAmounts{}, &ValidationError{Field: "vat_rate", Reason: "must not be negative"}
	}

	rawNet := quantity.Mul(unitPrice)
	rawVAT := rawNet.Mul(vatRatePercent).Div(hundred)

	net := roundMoney(rawNet)
	vat := roundMoney(rawVAT)
	gross := net.Add(vat)
	if gross.GreaterThan(MaxLineAmount) {
		return LineAmounts{}, &ValidationError{Field: "quantity", Reason: "line total exceeds " + MaxLineAmount.StringFixed(moneyPlaces)}
	}

	return LineAmounts{
		Net:   net,
		VAT:   vat,
		Gross: gross,
	}, nil
}

// checkDigits bounds the integer digits and the significant fractional digits of d.
// It reads the coefficient and exponent directly, so a value like 1e3000000 is
// rejected without being rescaled.
func checkDigits(field string, d decimal.Decimal, maxIntDigits, maxScale int32) error {
	if d.IsZero() {
		return nil
	}
	coefficient := strings.TrimLeft(d.Coefficient().String(), "-")
	significant := strings.TrimRight(coefficient, "0")
	exponent := int64(d.Exponent()) + int64(len(coefficient)-len(significant))

	if exponent < -int64(maxScale) {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("at most %d decimal places allowed", maxScale)}
	}
	if int64(len(significant))+exponent > int64(maxIntDigits) {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("at most %d integer digits allowed", maxIntDigits)}
	}
	return nil
}

// roundMoney rounds half away from zero, which is half-up for the non-negative amounts
// accepted above.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
